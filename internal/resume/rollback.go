package resume

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// CompileFunc compiles a .tex file and returns (pdfPath, log, error).
// Injectable so the rollback orchestrator can be tested without pdflatex.
type CompileFunc func(ctx context.Context, texPath, outDir string, timeout time.Duration) (string, string, error)

// CompileJob describes one compile-with-rollback attempt.
type CompileJob struct {
	MutatedTex  string
	OriginalTex string
	// BaseName is the template filename, e.g. "master_ai.tex". The scratch
	// .tex keeps this name so \input-relative paths behave as they would
	// for the template.
	BaseName     string
	Company      string
	Role         string
	JDHash       string
	ArtifactsDir string
	Timeout      time.Duration
	// Compile overrides the compiler; nil uses Compile (pdflatex).
	Compile CompileFunc
}

// CompileResult reports the outcome of a compile-with-rollback attempt.
type CompileResult struct {
	PDFPath      string
	RollbackUsed bool
	Log          string
}

// CompileWithRollback compiles the mutated document to a persistent
// artifact. If that fails it retries with the original, unmutated template
// under a "_fallback" suffix so a deliverable still exists. Only when both
// attempts fail does the run end without an artifact; the returned error
// then carries both failures.
func CompileWithRollback(ctx context.Context, job CompileJob) (CompileResult, error) {
	compile := job.Compile
	if compile == nil {
		compile = Compile
	}

	primaryPath, primaryLog, primaryErr := compileToArtifact(ctx, compile, job, job.MutatedTex, false)
	if primaryErr == nil {
		return CompileResult{PDFPath: primaryPath, Log: primaryLog}, nil
	}

	fallbackPath, fallbackLog, fallbackErr := compileToArtifact(ctx, compile, job, job.OriginalTex, true)
	if fallbackErr == nil {
		return CompileResult{PDFPath: fallbackPath, RollbackUsed: true, Log: fallbackLog}, nil
	}

	return CompileResult{Log: primaryLog + fallbackLog},
		fmt.Errorf("compile failed (%v); fallback compile also failed (%v)", primaryErr, fallbackErr)
}

// compileToArtifact writes tex to a scratch dir, compiles it, and copies
// the PDF to its content-addressed persistent path.
func compileToArtifact(ctx context.Context, compile CompileFunc, job CompileJob, tex string, fallback bool) (string, string, error) {
	scratch, err := os.MkdirTemp("", "resume-compile-*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	baseName := job.BaseName
	if baseName == "" {
		baseName = "resume.tex"
	}
	texPath := filepath.Join(scratch, baseName)
	if err := os.WriteFile(texPath, []byte(tex), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write scratch tex: %w", err)
	}

	pdfPath, logOutput, err := compile(ctx, texPath, scratch, job.Timeout)
	if err != nil {
		return "", logOutput, err
	}

	if err := os.MkdirAll(job.ArtifactsDir, 0755); err != nil {
		return "", logOutput, fmt.Errorf("failed to create artifacts dir: %w", err)
	}
	persisted := filepath.Join(job.ArtifactsDir, ArtifactName(job.Company, job.Role, job.JDHash, fallback))
	if err := copyFile(pdfPath, persisted); err != nil {
		return "", logOutput, fmt.Errorf("failed to persist artifact: %w", err)
	}
	return persisted, logOutput, nil
}

// ArtifactName builds the persistent artifact filename: slugified company
// and role for readability plus a short hash prefix for collision
// resistance.
func ArtifactName(company, role, jdHash string, fallback bool) string {
	prefix := jdHash
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	name := fmt.Sprintf("%s_%s_%s", Slugify(company), Slugify(role), prefix)
	if fallback {
		name += "_fallback"
	}
	return name + ".pdf"
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a string and replaces runs of non-alphanumerics with a
// single hyphen, keeping artifact names filesystem-safe.
func Slugify(s string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "unknown"
	}
	return slug
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}
