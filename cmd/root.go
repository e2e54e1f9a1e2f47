// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/DataDog/datadog-netdiag/config"
	"github.com/DataDog/datadog-netdiag/diagnosis"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/server"
	"github.com/spf13/cobra"
)

type args struct {
	configPath string
	logLevel   string
	verbose    bool
}

var Args args

var rootCmd = &cobra.Command{
	Use:           "datadog-netdiag",
	Short:         "Network diagnostics CLI",
	Long:          `Runs network diagnostics (ping, traceroute, DNS, connectivity, throughput, bandwidth) and prints JSON results`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLogLevel(Args.logLevel)
		if err != nil {
			return err
		}
		log.SetLogLevel(level)
		log.SetVerbose(Args.verbose)
		return nil
	},
}

// Execute runs the root command until completion or until SIGINT/SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(Args.configPath)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

type engine = server.Engine

// newEngine is swapped in tests
var newEngine = func(cfg config.Config) engine {
	return diagnosis.New(cfg)
}

func loadEngine() (engine, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	return newEngine(cfg), cfg, nil
}

func printJSON(w io.Writer, v any) error {
	jsonStr, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("JSON marshalling failed: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonStr))
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&Args.configPath, "config", "", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&Args.logLevel, "log-level", "l", "warn", "Log level (error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().BoolVarP(&Args.verbose, "verbose", "v", false, "verbose")
}
