package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

var renderLaTeXCmd = &cobra.Command{
	Use:   "render-latex",
	Short: "Render a LaTeX resume from a profile JSON file",
	Long:  "Renders a profile as a one-page LaTeX resume with the built-in layout or a custom template.",
	RunE:  runRenderLaTeX,
}

var (
	renderLaTeXProfileFile  string
	renderLaTeXTemplateFile string
	renderLaTeXOutputFile   string
)

func init() {
	renderLaTeXCmd.Flags().StringVarP(&renderLaTeXProfileFile, "profile", "p", "", "Path to profile JSON file (required)")
	renderLaTeXCmd.Flags().StringVarP(&renderLaTeXTemplateFile, "template", "t", "", "Path to a LaTeX text/template file (optional)")
	renderLaTeXCmd.Flags().StringVarP(&renderLaTeXOutputFile, "out", "o", "", "Path to output .tex file (default: stdout)")
	_ = renderLaTeXCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(renderLaTeXCmd)
}

func readProfile(path string) (*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	var profile types.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return &profile, nil
}

// writeOutput writes content to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func runRenderLaTeX(cmd *cobra.Command, _ []string) error {
	profile, err := readProfile(renderLaTeXProfileFile)
	if err != nil {
		return err
	}

	var latex string
	if renderLaTeXTemplateFile != "" {
		latex, err = rendering.RenderWithTemplate(profile, renderLaTeXTemplateFile)
		if err != nil {
			return err
		}
	} else {
		latex = rendering.Assemble(profile)
	}
	return writeOutput(cmd, renderLaTeXOutputFile, latex)
}
