package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the profile, LaTeX, PDF, optimization, assistant and job posting endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	srv, closers, err := buildServer(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	srv.OnShutdown(closers.close)

	log.Printf("[serve] provider=%s store=%s sessions=%s", cfg.LLMProvider, storeKind(cfg.MongoURI), sessionKind(cfg.RedisURL))
	return srv.Start()
}

func storeKind(uri string) string {
	if uri == memoryStoreURI {
		return "memory"
	}
	return "mongodb"
}

func sessionKind(redisURL string) string {
	if redisURL == "" {
		return "memory"
	}
	return "redis"
}
