// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package cmd

import (
	"github.com/DataDog/datadog-netdiag/common"
	"github.com/spf13/cobra"
)

var (
	pingCount       int
	monitorDuration int
	monitorInterval int
	serverAddr      string
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List network interfaces with their addresses and link status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := loadEngine()
		if err != nil {
			return err
		}
		res := e.Interfaces(cmd.Context())
		if res.Error != nil {
			return res.Error
		}
		return printJSON(cmd.OutOrStdout(), res.Interfaces)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print I/O counters summed over all interfaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := loadEngine()
		if err != nil {
			return err
		}
		res := e.Stats(cmd.Context())
		if res.Error != nil {
			return res.Error
		}
		return printJSON(cmd.OutOrStdout(), res.IOCounters)
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping [host]",
	Short: "Send ICMP echo requests to a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := loadEngine()
		if err != nil {
			return err
		}
		res, err := e.Ping(cmd.Context(), args[0], pingCount)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var tracerouteCmd = &cobra.Command{
	Use:   "traceroute [host]",
	Short: "Trace the network path to a host using the system path tracer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cfg, err := loadEngine()
		if err != nil {
			return err
		}
		host := cfg.Traceroute.Host
		if len(args) == 1 {
			host = args[0]
		}
		res, err := e.Traceroute(cmd.Context(), host)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var dnsCmd = &cobra.Command{
	Use:   "dns [domain]",
	Short: "Resolve A, AAAA and MX records for a domain",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cfg, err := loadEngine()
		if err != nil {
			return err
		}
		domain := cfg.DNS.Domain
		if len(args) == 1 {
			domain = args[0]
		}
		res, err := e.DNS(cmd.Context(), domain)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var speedtestCmd = &cobra.Command{
	Use:   "speedtest",
	Short: "Measure download and upload throughput against a public test server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := loadEngine()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), e.Speedtest(cmd.Context()))
	},
}

var bandwidthCmd = &cobra.Command{
	Use:   "bandwidth",
	Short: "Sample interface counters and report average transfer rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := loadEngine()
		if err != nil {
			return err
		}
		session, err := e.BandwidthMonitor(cmd.Context(), monitorDuration, monitorInterval)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), session)
	},
}

var connectivityCmd = &cobra.Command{
	Use:   "connectivity",
	Short: "Check TCP reachability of the configured targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := loadEngine()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), e.Connectivity(cmd.Context()))
	},
}

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Run every probe and print the merged report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := loadEngine()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), e.FullDiagnosis(cmd.Context()))
	},
}

func init() {
	pingCmd.Flags().IntVarP(&pingCount, "count", "c", 0, "Number of echo requests (0 uses the configured default)")
	bandwidthCmd.Flags().IntVarP(&monitorDuration, "duration", "d", common.DefaultMonitorDuration, "Number of samples")
	bandwidthCmd.Flags().IntVarP(&monitorInterval, "interval", "i", common.DefaultMonitorInterval, "Seconds between samples")

	rootCmd.AddCommand(interfacesCmd, statsCmd, pingCmd, tracerouteCmd, dnsCmd,
		speedtestCmd, bandwidthCmd, connectivityCmd, fullCmd)
}
