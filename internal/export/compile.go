// Package export turns generated LaTeX into PDFs and archives both to
// S3-compatible object storage.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CompilationTimeout is the maximum time to wait for LaTeX compilation.
const CompilationTimeout = 30 * time.Second

// maxLogBytes bounds the compiler log kept on errors.
const maxLogBytes = 8 << 10

const texName = "resume.tex"

// Compiler runs pdflatex in a scratch directory per document.
type Compiler struct {
	binary  string
	timeout time.Duration
}

// NewCompiler returns a Compiler for binary, "pdflatex" when empty.
func NewCompiler(binary string, timeout time.Duration) *Compiler {
	if binary == "" {
		binary = "pdflatex"
	}
	if timeout <= 0 {
		timeout = CompilationTimeout
	}
	return &Compiler{binary: binary, timeout: timeout}
}

// Available reports whether the compiler binary can be found.
func (c *Compiler) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Compile renders a LaTeX document to PDF bytes. A document that compiles
// with errors but still produces a PDF is returned together with a
// *CompilationError.
func (c *Compiler) Compile(ctx context.Context, latex string) ([]byte, error) {
	if strings.TrimSpace(latex) == "" {
		return nil, &CompilationError{Message: "document is empty"}
	}
	binary, err := exec.LookPath(c.binary)
	if err != nil {
		return nil, &CompilationError{Message: "install a LaTeX distribution (e.g., TeX Live)", Cause: errors.Join(ErrToolchainMissing, err)}
	}

	workDir, err := os.MkdirTemp("", "latex-compile-*")
	if err != nil {
		return nil, &CompilationError{Message: "failed to create temporary working directory", Cause: err}
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Printf("[export] failed to remove %s: %v", workDir, err)
		}
	}()

	texPath := filepath.Join(workDir, texName)
	if err := os.WriteFile(texPath, []byte(latex), 0o600); err != nil {
		return nil, &CompilationError{Message: "failed to write LaTeX file", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, compileArgs(workDir, texPath)...)
	cmd.Dir = workDir
	cmd.Env = compileEnv(os.Environ())
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	logOutput := tail(output.String(), maxLogBytes)

	if ctx.Err() != nil {
		return nil, &CompilationError{Message: "compilation did not finish", LogOutput: logOutput, Cause: ctx.Err()}
	}

	pdf, readErr := os.ReadFile(filepath.Join(workDir, strings.TrimSuffix(texName, ".tex")+".pdf"))
	if readErr != nil {
		return nil, &CompilationError{Message: "PDF was not generated", LogOutput: logOutput, Cause: errors.Join(runErr, readErr)}
	}
	log.Printf("[export] compiled %d bytes of LaTeX to %d byte PDF in %s", len(latex), len(pdf), time.Since(start).Round(time.Millisecond))

	if runErr != nil {
		return pdf, &CompilationError{Message: "completed with errors (PDF may be incomplete)", LogOutput: logOutput, Cause: runErr}
	}
	return pdf, nil
}

// compileArgs disables \write18 so documents cannot run shell commands.
func compileArgs(workDir, texPath string) []string {
	return []string{"-no-shell-escape", "-interaction=nonstopmode", "-halt-on-error", "-output-directory", workDir, texPath}
}

// compileEnv restricts TeX file access to paranoid mode: no absolute paths,
// no parent directories, no dotfiles, for both reads and writes.
func compileEnv(base []string) []string {
	env := make([]string, 0, len(base)+3)
	for _, kv := range base {
		switch {
		case strings.HasPrefix(kv, "openin_any="), strings.HasPrefix(kv, "openout_any="), strings.HasPrefix(kv, "shell_escape="):
			continue
		}
		env = append(env, kv)
	}
	return append(env, "openin_any=p", "openout_any=p", "shell_escape=f")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("...%s", s[len(s)-n:])
}
