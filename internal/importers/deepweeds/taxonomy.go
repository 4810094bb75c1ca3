package deepweeds

import (
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// Taxon is the scientific identity of a DeepWeeds class.
type Taxon struct {
	Species       string
	EPPOTaxonCode string
}

// Category roles.
const (
	RoleWeed = "weed"
	RoleNA   = "na"
)

// negativeCommonName labels images without any target weed.
const negativeCommonName = "negative"

// knownTaxa maps DeepWeeds common names to species and EPPO codes.
var knownTaxa = map[string]Taxon{
	"chinee apple":   {Species: "ziziphus mauritiana", EPPOTaxonCode: "ZIPMA"},
	"lantana":        {Species: "lantana camara", EPPOTaxonCode: "LANCA"},
	"snake weed":     {Species: "gutierrezia sarothrae", EPPOTaxonCode: "GUESA"},
	"siam weed":      {Species: "chromolaena odorata", EPPOTaxonCode: "EUPOD"},
	"prickly acacia": {Species: "vachellia nilotica", EPPOTaxonCode: "ACANL"},
	"parthenium":     {Species: "parthenium hysterophorus", EPPOTaxonCode: "PTNHY"},
	"rubber vine":    {Species: "cryptostegia grandiflora", EPPOTaxonCode: "CVRGR"},
	"parkinsonia":    {Species: "parkinsonia aculeata", EPPOTaxonCode: "PAKAC"},
}

// speciesRenames rewrites lower-cased species strings to their canonical common name.
var speciesRenames = map[string]string{
	"none": "empty",
}

var lowerCaser = cases.Lower(language.Und)

// CanonicalName lower-cases a Species value and applies the rename table.
func CanonicalName(species string) string {
	name := lowerCaser.String(strings.TrimSpace(species))
	if renamed, ok := speciesRenames[name]; ok {
		return renamed
	}
	return name
}

// LookupTaxon returns the taxon for a canonical common name.
func LookupTaxon(commonName string) (Taxon, bool) {
	t, ok := knownTaxa[commonName]
	return t, ok
}

// KnownCommonNames returns the common names in the taxonomy table, sorted.
func KnownCommonNames() []string {
	names := make([]string, 0, len(knownTaxa))
	for name := range knownTaxa {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SuggestCommonName returns the table entry closest to an unknown common name.
// A fuzzy subsequence match is preferred, then the smallest edit distance
// within half the name's length.
func SuggestCommonName(commonName string) (string, bool) {
	names := KnownCommonNames()

	ranks := fuzzy.RankFindNormalizedFold(commonName, names)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target, true
	}

	best, bestDistance := "", -1
	for _, name := range names {
		d := fuzzy.LevenshteinDistance(commonName, name)
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = name, d
		}
	}
	if bestDistance >= 0 && bestDistance <= len(commonName)/2 {
		return best, true
	}
	return "", false
}

// newCategory builds the category for a label the first time it is seen.
// known is false when a weed's common name is missing from the taxonomy
// table; the common name then stands in for the species in the name.
func newCategory(label int, commonName string) (cat weedcoco.Category, known bool) {
	cat = weedcoco.Category{
		ID:         label,
		CommonName: commonName,
	}

	if commonName == negativeCommonName {
		cat.Name = "none"
		cat.Role = RoleNA
		return cat, true
	}

	cat.Role = RoleWeed
	taxon, known := LookupTaxon(commonName)
	if known {
		cat.Species = taxon.Species
		cat.EPPOTaxonCode = taxon.EPPOTaxonCode
		cat.Name = cat.Role + ": " + taxon.Species
		return cat, true
	}

	cat.Name = cat.Role + ": " + commonName
	return cat, false
}
