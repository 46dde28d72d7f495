package resume

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCompileTimeout bounds a single pdflatex invocation.
const DefaultCompileTimeout = 30 * time.Second

// Compile compiles a .tex file to PDF with pdflatex, writing output files
// into outDir. Returns the produced PDF path and the combined compiler log.
// Failure (non-zero exit, timeout, or missing PDF) returns a
// *CompilationError carrying the log.
func Compile(ctx context.Context, texPath, outDir string, timeout time.Duration) (string, string, error) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return "", "", &CompilationError{
			Message: "pdflatex not found in PATH; install a LaTeX distribution (e.g. TeX Live)",
			Cause:   err,
		}
	}

	if outDir == "" {
		outDir = filepath.Dir(texPath)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", "", &CompilationError{
			Message: fmt.Sprintf("failed to create output directory %s", outDir),
			Cause:   err,
		}
	}

	if timeout <= 0 {
		timeout = DefaultCompileTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdflatex",
		"-interaction=nonstopmode",
		"-output-directory", outDir,
		texPath,
	)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	logOutput := stdout.String() + stderr.String()

	pdfPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(texPath), ".tex")+".pdf")
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		return "", logOutput, &CompilationError{
			Message:   "PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	if runErr != nil {
		return "", logOutput, &CompilationError{
			Message:   "pdflatex exited with an error",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	return pdfPath, logOutput, nil
}
