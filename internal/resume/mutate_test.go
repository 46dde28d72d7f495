package resume

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMutations_NoRegionsReturnsInputUnchanged(t *testing.T) {
	doc := "plain document\nno markers here\n"
	out, err := ApplyMutations(doc, []Mutation{{Original: "plain", Replacement: "fancy"}}, MutationOptions{})
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestApplyMutations_ScopeInvariant(t *testing.T) {
	// The same sentence appears unprotected above the region and protected
	// inside it; only the protected copy may change.
	doc := `Built ML pipeline improving accuracy by 20\%
%%BEGIN_EDITABLE
Built ML pipeline improving accuracy by 20\%
%%END_EDITABLE
trailing line`

	out, err := ApplyMutations(doc, []Mutation{{
		Original:    `Built ML pipeline improving accuracy by 20\%`,
		Replacement: `Built ML pipeline improving accuracy by 30\%`,
	}}, MutationOptions{})
	require.NoError(t, err)

	outLines := strings.Split(out, "\n")
	assert.Equal(t, `Built ML pipeline improving accuracy by 20\%`, outLines[0], "unprotected line must not change")
	assert.Equal(t, `Built ML pipeline improving accuracy by 30\%`, outLines[2], "protected copy must change")
	assert.Equal(t, "trailing line", outLines[4])
}

func TestApplyMutations_FirstOccurrenceOnly(t *testing.T) {
	doc := "%%BEGIN_EDITABLE\nfoo bar\nfoo bar\n%%END_EDITABLE"
	out, err := ApplyMutations(doc, []Mutation{{Original: "foo", Replacement: "baz"}}, MutationOptions{})
	require.NoError(t, err)
	assert.Equal(t, "%%BEGIN_EDITABLE\nbaz bar\nfoo bar\n%%END_EDITABLE", out)
}

func TestApplyMutations_MissingOriginalSilentlySkipped(t *testing.T) {
	doc := "%%BEGIN_EDITABLE\nexisting content\n%%END_EDITABLE"
	out, err := ApplyMutations(doc, []Mutation{{Original: "not present", Replacement: "anything"}}, MutationOptions{})
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestApplyMutations_CapEnforced(t *testing.T) {
	doc := "%%BEGIN_EDITABLE\ncontent\n%%END_EDITABLE"
	muts := []Mutation{
		{Original: "a", Replacement: "b"},
		{Original: "c", Replacement: "d"},
		{Original: "e", Replacement: "f"},
		{Original: "g", Replacement: "h"},
	}

	_, err := ApplyMutations(doc, muts, MutationOptions{MaxCount: 3})
	require.Error(t, err)
	var capErr *TooManyMutationsError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 4, capErr.Count)
	assert.Equal(t, 3, capErr.Max)

	// Exactly at the cap succeeds.
	_, err = ApplyMutations(doc, muts[:3], MutationOptions{MaxCount: 3})
	assert.NoError(t, err)

	// Zero mutations always succeed.
	out, err := ApplyMutations(doc, nil, MutationOptions{MaxCount: 3})
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestApplyMutations_UnboundedByDefault(t *testing.T) {
	doc := "%%BEGIN_EDITABLE\na b c d e\n%%END_EDITABLE"
	muts := make([]Mutation, 0, 10)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		muts = append(muts, Mutation{Original: s, Replacement: strings.ToUpper(s)})
	}
	muts = append(muts, muts...) // 10 mutations, second half misses

	out, err := ApplyMutations(doc, muts, MutationOptions{})
	require.NoError(t, err)
	assert.Equal(t, "%%BEGIN_EDITABLE\nA B C D E\n%%END_EDITABLE", out)
}

func TestApplyMutations_MultiRegionLineShiftStaysCorrect(t *testing.T) {
	// The first region's replacement adds lines; the second region, already
	// processed (reverse order), must still land in the right place.
	doc := `%%BEGIN_EDITABLE
alpha
%%END_EDITABLE
middle
%%BEGIN_EDITABLE
omega
%%END_EDITABLE`

	out, err := ApplyMutations(doc, []Mutation{
		{Original: "alpha", Replacement: "alpha\nalpha-extra"},
		{Original: "omega", Replacement: "OMEGA"},
	}, MutationOptions{})
	require.NoError(t, err)

	assert.Equal(t, `%%BEGIN_EDITABLE
alpha
alpha-extra
%%END_EDITABLE
middle
%%BEGIN_EDITABLE
OMEGA
%%END_EDITABLE`, out)
}

func TestApplyMutations_RoundTripMaskedOutsideUnchanged(t *testing.T) {
	// A no-op mutation pass must leave every byte outside the regions
	// intact, which also means masked documents compare equal.
	out, err := ApplyMutations(twoRegionDoc, nil, MutationOptions{})
	require.NoError(t, err)
	assert.Equal(t, twoRegionDoc, out)
}
