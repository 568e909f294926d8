package wikidata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiteral(t *testing.T) {
	for _, tc := range []struct{ in, out string }{
		{"Drake", `"Drake"`},
		{`Guns "N" Roses`, `"Guns \"N\" Roses"`},
		{`back\slash`, `"back\\slash"`},
		{"two\nlines", `"two\nlines"`},
	} {
		assert.Equal(t, tc.out, literal(tc.in), tc.in)
	}
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "Q42", entityID("http://www.wikidata.org/entity/Q42"))
	assert.Equal(t, "Q42", entityID("Q42"))
	assert.Equal(t, "", entityID(""))
}

func TestCatalogQueryPaging(t *testing.T) {
	q := catalogQuery("en", 250, 500)
	assert.Contains(t, q, "LIMIT 250")
	assert.Contains(t, q, "OFFSET 500")
	assert.Contains(t, q, "wd:Q215380")
	assert.Contains(t, q, "wdt:P18 ?image")
}

func TestImageQueryMatchesOccupations(t *testing.T) {
	q := imageQuery("Björk", "is")
	assert.Contains(t, q, `rdfs:label "Björk"@is`)
	assert.Contains(t, q, `REGEX(?occupationLabel, "singer|rapper`)
	assert.Contains(t, q, `"i")`)
}
