package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/agents"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/pipeline"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Tailor a profile to a job description",
	Long: `Runs job analysis, profile matching and the section optimizers, then writes
the tailored LaTeX resume. The job description comes from --job or --job-url.`,
	RunE: runOptimize,
}

var (
	optimizeProfileFile string
	optimizeJobFile     string
	optimizeJobURL      string
	optimizeOutputFile  string
	optimizeResultFile  string
)

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeProfileFile, "profile", "p", "", "Path to profile JSON file (required)")
	optimizeCmd.Flags().StringVarP(&optimizeJobFile, "job", "j", "", "Path to a plain text job description")
	optimizeCmd.Flags().StringVar(&optimizeJobURL, "job-url", "", "Job posting URL to import the description from")
	optimizeCmd.Flags().StringVarP(&optimizeOutputFile, "out", "o", "", "Path to output .tex file (default: stdout)")
	optimizeCmd.Flags().StringVar(&optimizeResultFile, "result", "", "Path to write the full JSON result (optional)")
	_ = optimizeCmd.MarkFlagRequired("profile")
	optimizeCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	optimizeCmd.MarkFlagsOneRequired("job", "job-url")

	rootCmd.AddCommand(optimizeCmd)
}

func readJobDescription(ctx context.Context, file, url string, useBrowser bool) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return string(data), nil
	}
	opts := []fetch.ImporterOption{}
	if !useBrowser {
		opts = append(opts, fetch.WithRenderer(nil))
	}
	job, err := fetch.NewImporter(opts...).Import(ctx, url)
	if err != nil {
		return "", err
	}
	return job.Text, nil
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := readProfile(optimizeProfileFile)
	if err != nil {
		return err
	}
	jobDescription, err := readJobDescription(ctx, optimizeJobFile, optimizeJobURL, cfg.UseBrowser)
	if err != nil {
		return err
	}
	if strings.TrimSpace(profile.UserID) == "" {
		profile.UserID = "cli"
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	// Runs are recorded only when a database is configured.
	var recorder pipeline.RunRecorder
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		recorder = database
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	opts := pipeline.RunOptions{Profile: profile, JobDescription: jobDescription}
	if cfg.Verbose {
		opts.OnProgress = printer.PrintProgress
	}

	result, err := pipeline.New(agents.New(client, agents.DefaultStageTimeout), recorder).Run(ctx, opts)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printer.PrintJobAnalysis(result.Analysis)
		printer.PrintMatchAnalysis(result.Match)
		printer.PrintOutcomes(result.Outcomes)
	}

	if optimizeResultFile != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		if err := os.WriteFile(optimizeResultFile, data, 0o644); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	return writeOutput(cmd, optimizeOutputFile, result.Document)
}
