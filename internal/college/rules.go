// Package college groups students by institute. Free-text institute names
// are matched against a keyword table first and otherwise reduced to their
// core words.
package college

// KeywordGroup maps any of Keywords (lower case substrings) to one college.
type KeywordGroup struct {
	ID       string
	Keywords []string
	Label    string
}

// Rules configures a grouping pass.
type Rules struct {
	Groups   []KeywordGroup
	Ignored  []string
	Excluded []string
}

// OtherKey collects names with no usable core words.
const OtherKey = "other_unknown"

const unknownInstitute = "Unknown Institute"

var keywordGroups = []KeywordGroup{
	{ID: "somaiya", Keywords: []string{"somaiya"}, Label: "Somaiya Vidyavihar"},
	{ID: "sies", Keywords: []string{"sies"}, Label: "SIES College"},
	{ID: "ves", Keywords: []string{"ves", "vivekanand"}, Label: "VES College"},
	{ID: "dypatil", Keywords: []string{"dy patil", "d.y. patil", "d y patil"}, Label: "D.Y. Patil University"},
	{ID: "model", Keywords: []string{"model college"}, Label: "Model College"},
	{ID: "pendharkar", Keywords: []string{"pendharkar"}, Label: "Pendharkar College"},
	{ID: "saket", Keywords: []string{"saket"}, Label: "Saket College"},
	{ID: "manjunath", Keywords: []string{"manjunath"}, Label: "Manjunatha College"},
	{ID: "bedekar", Keywords: []string{"bedekar", "vpm"}, Label: "Joshi Bedekar College"},
	{ID: "chm", Keywords: []string{"chm", "chandibai"}, Label: "CHM College"},
	{ID: "agarwal", Keywords: []string{"agarwal"}, Label: "Agarwal College"},
	{ID: "royal", Keywords: []string{"royal"}, Label: "Royal College"},
	{ID: "sst", Keywords: []string{"sst"}, Label: "SST College"},
	{ID: "vaze", Keywords: []string{"vaze", "kelkar"}, Label: "Vaze Kelkar College"},
	{ID: "bnn", Keywords: []string{"bnn"}, Label: "BNN College"},
	{ID: "vikas", Keywords: []string{"vikas"}, Label: "Vikas College"},
	{ID: "ratnam", Keywords: []string{"ratnam"}, Label: "Ratnam College"},
	{ID: "menon", Keywords: []string{"menon"}, Label: "Menon College"},
	{ID: "ruparel", Keywords: []string{"ruparel"}, Label: "Ruparel College"},
	{ID: "ruia", Keywords: []string{"ruia"}, Label: "Ruia College"},
	{ID: "jaihind", Keywords: []string{"jai hind", "jaihind"}, Label: "Jai Hind College"},
	{ID: "mithibai", Keywords: []string{"mithibai"}, Label: "Mithibai College"},
	{ID: "wilson", Keywords: []string{"wilson"}, Label: "Wilson College"},
	{ID: "xavier", Keywords: []string{"xavier"}, Label: "St. Xaviers College"},
	{ID: "kc", Keywords: []string{"kc college"}, Label: "KC College"},
	{ID: "hr", Keywords: []string{"hr college"}, Label: "HR College"},
}

var ignoredWords = []string{
	"college", "degree", "junior", "senior", "arts", "science", "commerce",
	"institute", "technology", "management", "university", "trust", "society",
	"of", "and", "&", "the", "campus", "autonomous",
}

// DistributionRules drive the college distribution view. The host college
// and anything matching its misspellings is left out, as is any name
// containing "college".
var DistributionRules = Rules{
	Groups:   keywordGroups,
	Ignored:  ignoredWords,
	Excluded: []string{"birla", "biral", "brila", "bkbck", "bk", "college", "b.k.birka"},
}

// EventRules drive the per-event breakdown, which counts the host college
// as its own group.
var EventRules = Rules{
	Groups:  append([]KeywordGroup{{ID: "birla", Keywords: []string{"birla"}, Label: "Birla College"}}, keywordGroups...),
	Ignored: ignoredWords,
}
