package filter

import "strings"

// Level is a content-filter strictness tier. Tiers nest: everything blocked at
// a lower tier is blocked at every higher one.
type Level int

const (
	LevelNone Level = iota
	LevelLight
	LevelModerate
	LevelStrict
)

func (l Level) String() string {
	switch l {
	case LevelLight:
		return "light"
	case LevelModerate:
		return "moderate"
	case LevelStrict:
		return "strict"
	default:
		return "none"
	}
}

func ParseLevel(value string) (Level, bool) {
	switch strings.ToLower(value) {
	case "none":
		return LevelNone, true
	case "light":
		return LevelLight, true
	case "moderate":
		return LevelModerate, true
	case "strict":
		return LevelStrict, true
	}
	return LevelLight, false
}

// Lists holds the banned-word sets by severity. The light tier checks Severe
// only; moderate adds Moderate; strict adds Mild on top.
type Lists struct {
	Severe   []string
	Moderate []string
	Mild     []string
}

func DefaultLists() Lists {
	return Lists{
		Severe: []string{
			"fuck",
			"cunt",
			"motherfucker",
			"dickhead",
			"whore",
			"slut",
		},
		Moderate: []string{
			"shit",
			"bitch",
			"asshole",
			"bastard",
			"douche",
		},
		Mild: []string{
			"damn",
			"crap",
			"piss",
			"hell",
		},
	}
}

type Filter struct {
	lists Lists
}

func New(lists Lists) *Filter {
	return &Filter{lists: lists}
}

// Classify reports whether text must be removed at the given level, and the
// first banned term it matched. Matching is case-insensitive substring
// containment: a banned term matches anywhere inside a larger token.
func (f *Filter) Classify(text string, level Level) (bool, string) {
	if level <= LevelNone || text == "" {
		return false, ""
	}

	content := strings.ToLower(text)
	if term, ok := containsAny(content, f.lists.Severe); ok {
		return true, term
	}
	if level >= LevelModerate {
		if term, ok := containsAny(content, f.lists.Moderate); ok {
			return true, term
		}
	}
	if level >= LevelStrict {
		if term, ok := containsAny(content, f.lists.Mild); ok {
			return true, term
		}
	}
	return false, ""
}

func containsAny(content string, terms []string) (string, bool) {
	for _, term := range terms {
		if strings.Contains(content, term) {
			return term, true
		}
	}
	return "", false
}
