// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package cmd

import (
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagnostics over an HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cfg, err := loadEngine()
		if err != nil {
			return err
		}
		addr := cfg.Server.Addr
		if serverAddr != "" {
			addr = serverAddr
		}
		log.Infof("Example usage: curl http://localhost%s/api/ping/8.8.8.8?count=4", addr)
		return server.NewServer(e).Start(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serverAddr, "addr", "a", "", "HTTP server address to listen on (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
