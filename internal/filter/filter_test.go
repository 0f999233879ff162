package filter

import "testing"

func testFilter() *Filter {
	return New(Lists{
		Severe:   []string{"slurword"},
		Moderate: []string{"midword"},
		Mild:     []string{"damn"},
	})
}

func TestNoneNeverBlocks(t *testing.T) {
	f := testFilter()
	if blocked, _ := f.Classify("slurword midword damn", LevelNone); blocked {
		t.Fatalf("level none must never block")
	}
}

func TestTierMonotonicity(t *testing.T) {
	f := testFilter()
	levels := []Level{LevelNone, LevelLight, LevelModerate, LevelStrict}

	cases := []struct {
		text      string
		blockedAt Level
	}{
		{"this contains slurword here", LevelLight},
		{"this contains midword here", LevelModerate},
		{"well damn", LevelStrict},
	}

	for _, tc := range cases {
		for _, level := range levels {
			blocked, _ := f.Classify(tc.text, level)
			want := level >= tc.blockedAt
			if blocked != want {
				t.Fatalf("Classify(%q, %v) = %t, want %t", tc.text, level, blocked, want)
			}
		}
	}
}

func TestCaseInsensitive(t *testing.T) {
	f := testFilter()
	blocked, term := f.Classify("SLURWORD", LevelLight)
	if !blocked || term != "slurword" {
		t.Fatalf("expected case-insensitive match, got blocked=%t term=%q", blocked, term)
	}
}

func TestSubstringContainment(t *testing.T) {
	// Matching is containment, not word-boundary: a banned term inside a
	// larger token still blocks.
	f := testFilter()
	if blocked, _ := f.Classify("xxslurwordxx", LevelLight); !blocked {
		t.Fatalf("expected substring match inside larger token")
	}
}

func TestCleanTextPasses(t *testing.T) {
	f := testFilter()
	if blocked, term := f.Classify("a perfectly fine message", LevelStrict); blocked {
		t.Fatalf("unexpected block on clean text (term %q)", term)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"none":     LevelNone,
		"light":    LevelLight,
		"Moderate": LevelModerate,
		"STRICT":   LevelStrict,
	}
	for input, want := range cases {
		got, ok := ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %t", input, got, ok)
		}
	}
	if _, ok := ParseLevel("bogus"); ok {
		t.Fatalf("expected parse failure for unknown level")
	}
}
