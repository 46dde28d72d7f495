package resume

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompiler returns a CompileFunc that fails when the scratch .tex
// contains any of failOn, and otherwise writes a stub PDF.
func fakeCompiler(t *testing.T, failOn string) CompileFunc {
	t.Helper()
	return func(ctx context.Context, texPath, outDir string, timeout time.Duration) (string, string, error) {
		content, err := os.ReadFile(texPath)
		require.NoError(t, err)
		if failOn != "" && strings.Contains(string(content), failOn) {
			return "", "! Undefined control sequence.", &CompilationError{Message: "PDF was not generated"}
		}
		pdfPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(texPath), ".tex")+".pdf")
		require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.5 stub"), 0644))
		return pdfPath, "ok", nil
	}
}

func testJob(t *testing.T, compile CompileFunc) CompileJob {
	t.Helper()
	return CompileJob{
		MutatedTex:   "mutated \\badmacro body",
		OriginalTex:  "original body",
		BaseName:     "master_ai.tex",
		Company:      "Acme Corp",
		Role:         "Staff PM",
		JDHash:       "abcdef0123456789",
		ArtifactsDir: t.TempDir(),
		Compile:      compile,
	}
}

func TestCompileWithRollback_PrimarySucceeds(t *testing.T) {
	job := testJob(t, fakeCompiler(t, ""))

	res, err := CompileWithRollback(context.Background(), job)
	require.NoError(t, err)
	assert.False(t, res.RollbackUsed)
	assert.Equal(t, "acme-corp_staff-pm_abcdef01.pdf", filepath.Base(res.PDFPath))
	assert.FileExists(t, res.PDFPath)
}

func TestCompileWithRollback_FallsBackToOriginal(t *testing.T) {
	job := testJob(t, fakeCompiler(t, "\\badmacro"))

	res, err := CompileWithRollback(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, res.RollbackUsed)
	assert.Equal(t, "acme-corp_staff-pm_abcdef01_fallback.pdf", filepath.Base(res.PDFPath))
	assert.FileExists(t, res.PDFPath)
}

func TestCompileWithRollback_BothFail(t *testing.T) {
	failAll := func(ctx context.Context, texPath, outDir string, timeout time.Duration) (string, string, error) {
		return "", "boom", errors.New("compiler exploded")
	}
	job := testJob(t, failAll)

	res, err := CompileWithRollback(context.Background(), job)
	require.Error(t, err)
	assert.Empty(t, res.PDFPath)
	assert.Contains(t, err.Error(), "fallback compile also failed")
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "acme_pm_abcdef01.pdf", ArtifactName("Acme", "PM", "abcdef0123456789", false))
	assert.Equal(t, "acme_pm_abc.pdf", ArtifactName("Acme", "PM", "abc", false))
	assert.Equal(t, "acme_pm_abcdef01_fallback.pdf", ArtifactName("Acme", "PM", "abcdef0123456789", true))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-corp", Slugify("Acme Corp"))
	assert.Equal(t, "c-engineer-ml", Slugify("C++ Engineer (ML)"))
	assert.Equal(t, "unknown", Slugify("!!!"))
}
