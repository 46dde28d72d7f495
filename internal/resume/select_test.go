package resume

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestKeywordOverlap(t *testing.T) {
	content := "Experienced in Python and SQL with Django."
	assert.InDelta(t, 1.0, KeywordOverlap([]string{"python", "sql"}, content), 1e-9)
	assert.InDelta(t, 0.5, KeywordOverlap([]string{"python", "rust"}, content), 1e-9)
	assert.InDelta(t, 0.0, KeywordOverlap([]string{"rust", "haskell"}, content), 1e-9)
	// Empty skill set scores zero, not one.
	assert.InDelta(t, 0.0, KeywordOverlap(nil, content), 1e-9)
}

func TestSelectBaseResume_HighestScoreWins(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "master_ai.tex", "Python SQL machine learning")
	writeTemplate(t, dir, "master_pm.tex", "Roadmaps, stakeholders, python")

	sel, err := SelectBaseResume([]string{"python", "sql", "machine learning"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "master_ai.tex", filepath.Base(sel.Path))
	assert.InDelta(t, 1.0, sel.Score, 1e-9)
	assert.Equal(t, 100, sel.FitPercent())
}

func TestSelectBaseResume_TieBreaksLexicographically(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "master_b.tex", "python everywhere")
	writeTemplate(t, dir, "master_a.tex", "python as well")

	sel, err := SelectBaseResume([]string{"python"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "master_a.tex", filepath.Base(sel.Path))
}

func TestSelectBaseResume_EmptySkillsPicksFirst(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "master_z.tex", "zzz")
	writeTemplate(t, dir, "master_a.tex", "aaa")

	sel, err := SelectBaseResume(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, "master_a.tex", filepath.Base(sel.Path))
	assert.Equal(t, 0, sel.FitPercent())
}

func TestSelectBaseResume_IgnoresNonMasterFiles(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "draft.tex", "python")
	writeTemplate(t, dir, "master_real.tex", "nothing relevant")

	sel, err := SelectBaseResume([]string{"python"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "master_real.tex", filepath.Base(sel.Path))
}

func TestSelectBaseResume_NoTemplates(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "notes.txt", "python")

	_, err := SelectBaseResume([]string{"python"}, dir)
	require.Error(t, err)
	var notFound *NoTemplatesFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestFitPercent_Rounds(t *testing.T) {
	assert.Equal(t, 33, Selection{Score: 1.0 / 3.0}.FitPercent())
	assert.Equal(t, 67, Selection{Score: 2.0 / 3.0}.FitPercent())
}
