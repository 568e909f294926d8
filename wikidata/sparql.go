package wikidata

import (
	"fmt"
	"strings"

	"github.com/amonks/tastes/data"
)

// Occupation labels that count as "musician" for image enrichment.
const occupationPattern = "singer|rapper|musician|songwriter|composer|disc jockey|record producer|guitarist|drummer|pianist|bassist|vocalist"

const (
	classMusicalGroup = "Q215380"
	classHuman        = "Q5"
)

// Occupations a human entity may hold to be part of the catalog.
var catalogOccupations = []string{
	"Q177220",  // singer
	"Q639669",  // musician
	"Q2252262", // rapper
	"Q753110",  // songwriter
	"Q36834",   // composer
	"Q130857",  // disc jockey
}

func catalogQuery(lang string, limit, offset int) string {
	occupations := make([]string, len(catalogOccupations))
	for i, q := range catalogOccupations {
		occupations[i] = "wd:" + q
	}
	return fmt.Sprintf(`SELECT ?item ?itemLabel ?image (GROUP_CONCAT(DISTINCT ?alias; separator="|") AS ?aliases) WHERE {
  {
    ?item wdt:P31 wd:%s .
  } UNION {
    ?item wdt:P31 wd:%s ;
          wdt:P106 ?occupation .
    VALUES ?occupation { %s }
  }
  ?item wdt:P18 ?image .
  OPTIONAL { ?item skos:altLabel ?alias . FILTER(LANG(?alias) = "%s") }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s" . }
}
GROUP BY ?item ?itemLabel ?image
ORDER BY ?item
LIMIT %d
OFFSET %d`, classMusicalGroup, classHuman, strings.Join(occupations, " "), lang, lang, limit, offset)
}

func imageQuery(name, lang string) string {
	return fmt.Sprintf(`SELECT ?item ?image WHERE {
  ?item rdfs:label %s@%s ;
        wdt:P18 ?image .
  {
    ?item wdt:P31 wd:%s ;
          wdt:P106 ?occupation .
    ?occupation rdfs:label ?occupationLabel .
    FILTER(LANG(?occupationLabel) = "%s")
    FILTER(REGEX(?occupationLabel, "%s", "i"))
  } UNION {
    ?item wdt:P31 wd:%s .
  }
}
LIMIT 1`, literal(name), lang, classHuman, lang, occupationPattern, classMusicalGroup)
}

// literal quotes s as a SPARQL string literal.
func literal(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

type sparqlResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

type binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// entity adapts one catalog row. Rows without an item, a label or an
// image are rejected.
func entity(row map[string]binding) (data.Artist, bool) {
	id := entityID(row["item"].Value)
	name := strings.TrimSpace(row["itemLabel"].Value)
	image := secureImage(row["image"].Value)
	if id == "" || name == "" || image == "" {
		return data.Artist{}, false
	}
	// The label service falls back to the bare id when there's no label.
	if name == id {
		return data.Artist{}, false
	}

	var aliases []string
	for _, alias := range strings.Split(row["aliases"].Value, "|") {
		if alias = strings.TrimSpace(alias); alias != "" && alias != name {
			aliases = append(aliases, alias)
		}
	}

	return data.Artist{
		Name:     name,
		ImageURL: image,
		EntityID: id,
		Aliases:  aliases,
	}, true
}

// entityID returns the last path segment of an entity URI, eg "Q42" for
// "http://www.wikidata.org/entity/Q42".
func entityID(uri string) string {
	uri = strings.TrimSpace(uri)
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

func secureImage(u string) string {
	u = strings.TrimSpace(u)
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "https://" + rest
	}
	return u
}
