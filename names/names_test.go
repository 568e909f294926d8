package names_test

import (
	"testing"

	"github.com/amonks/tastes/names"
	"github.com/stretchr/testify/assert"
)

func TestSplitCredits(t *testing.T) {
	for _, tc := range []struct {
		in     string
		expect []string
	}{
		{"Bad Bunny & Drake", []string{"Bad Bunny", "Drake"}},
		{"Artist A (feat. Artist B)", []string{"Artist A"}},
		{"Artist A [Featuring Artist B & Artist C]", []string{"Artist A"}},
		{"Artist A feat Artist B", []string{"Artist A", "Artist B"}},
		{"Artist A feat. Artist B", []string{"Artist A", "Artist B"}},
		{"Artist A featuring Artist B", []string{"Artist A", "Artist B"}},
		{"A, B and C", []string{"A", "B", "C"}},
		{"Skrillex x Fred again.. X Flowdan", []string{"Skrillex", "Fred again..", "Flowdan"}},
		{"Tyler With The Band", []string{"Tyler", "The Band"}},
		{"AC/DC", []string{"AC", "DC"}},
		{"- Leading Dash -", []string{"Leading Dash"}},
		{"Xavier", []string{"Xavier"}},
		{"Lil Nas X", []string{"Lil Nas X"}},
		{"Lil Nas X feat. Jack Harlow", []string{"Lil Nas", "Jack Harlow"}},
		{"Lil Nas X & Jack Harlow", []string{"Lil Nas", "Jack Harlow"}},
		{"A (feat.Drake)", []string{"A"}},
		{"Birds (Featherweight Mix)", []string{"Birds (Featherweight Mix)"}},
		{"Saxon", []string{"Saxon"}},
		{"A &  & B", []string{"A", "B"}},
		{"", nil},
		{"   ", nil},
	} {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expect, names.SplitCredits(tc.in))
		})
	}
}

func TestSplitCreditsIsDeterministic(t *testing.T) {
	in := "SZA, Kendrick Lamar & Doechii (feat. Someone)"
	first := names.SplitCredits(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, names.SplitCredits(in))
	}
	assert.Equal(t, []string{"SZA", "Kendrick Lamar", "Doechii"}, first)
}

func TestPrimary(t *testing.T) {
	assert.Equal(t, "A", names.Primary("A & B"))
	assert.Equal(t, "", names.Primary(""))
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "taylor-swift", names.Canonicalize("Taylor Swift"))
	assert.Equal(t, "taylor-swift", names.Canonicalize("  taylor   swift "))
	assert.Equal(t, "beyoncé", names.Canonicalize("BEYONCÉ"))
	assert.Equal(t, "", names.Canonicalize("   "))
}

func TestCanonicalizeIdempotentOverNormalizeDisplay(t *testing.T) {
	for _, s := range []string{
		"Taylor Swift",
		"taylor   swift",
		"\tThe  Weeknd\n",
		"Ñengo Flow",
		"",
		"a-b c",
	} {
		assert.Equal(t, names.Canonicalize(s), names.Canonicalize(names.NormalizeDisplay(s)), s)
		assert.Equal(t, names.Canonicalize(s), names.Canonicalize(names.Canonicalize(s)), s)
	}
}

func TestNormalizeDisplay(t *testing.T) {
	assert.Equal(t, "Taylor Swift", names.NormalizeDisplay("  Taylor \t Swift "))
}

func TestEnrichable(t *testing.T) {
	assert.False(t, names.Enrichable(""))
	assert.False(t, names.Enrichable("MO"))
	assert.False(t, names.Enrichable(" X "))
	assert.True(t, names.Enrichable("SZA"))
	assert.True(t, names.Enrichable("A B"))
	assert.True(t, names.Enrichable("Drake"))
}
