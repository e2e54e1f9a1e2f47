// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package main provides the network diagnostics HTTP server binary
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/DataDog/datadog-netdiag/config"
	"github.com/DataDog/datadog-netdiag/diagnosis"
	ddlog "github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/server"
	"github.com/spf13/cobra"
)

var (
	addr       string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "datadog-netdiag-server",
	Short: "Network diagnostics HTTP server",
	Long:  `HTTP server that provides network diagnostics via REST API endpoints`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Set the log level
		level, err := ddlog.ParseLogLevel(logLevel)
		if err != nil {
			return err
		}
		ddlog.SetLogLevel(level)

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.Server.Addr = addr
		}

		srv := server.NewServer(diagnosis.New(cfg))

		ddlog.Infof("Log level set to: %s", logLevel)
		ddlog.Infof("Example usage: curl http://localhost%s/api/full-diagnosis", cfg.Server.Addr)

		return srv.Start(cmd.Context(), cfg.Server.Addr)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&addr, "addr", "a", "", "HTTP server address to listen on (default :5000)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (error, warn, info, debug, trace)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
