package matcher

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultErrorClassification(t *testing.T) {
	rules := Default()

	testCases := []struct {
		line    string
		error   bool
		warning bool
	}{
		{"ERROR: boom", true, false},
		{"test FAILED after 3 retries", true, false},
		{"Traceback (most recent call last):", true, false},
		{"panic: runtime error: index out of range", true, false},
		{"WARNING: disk nearly full", false, true},
		{"DeprecationWarning: use foo instead", false, true},
		{"all 25 tests passed", false, false},
		{"", false, false},
		// Case-sensitive defaults: lowercase does not match.
		{"error: something", false, false},
		{"warning: something", false, false},
	}

	for _, tc := range testCases {
		got := rules.Classify(tc.line)
		if got.Error != tc.error || got.Warning != tc.warning {
			t.Errorf("Classify(%q) = %+v, want error=%v warning=%v",
				tc.line, got, tc.error, tc.warning)
		}
	}
}

func TestLineMatchingBothClasses(t *testing.T) {
	rules := Default()

	got := rules.Classify("ERROR: DeprecationWarning treated as fatal")
	if !got.Error || !got.Warning {
		t.Errorf("expected both classes to match, got %+v", got)
	}
}

func TestParseCustomPatterns(t *testing.T) {
	rules := Parse(`\bfatal\b;\bexception\b`, "deprecated,obsolete", testLogger())

	if got := rules.Classify("fatal: cannot connect"); !got.Error {
		t.Errorf("expected custom error pattern to match")
	}
	if got := rules.Classify("this API is deprecated"); !got.Warning {
		t.Errorf("expected custom warning pattern to match")
	}
	// Custom patterns replace the defaults entirely.
	if got := rules.Classify("ERROR: boom"); got.Error {
		t.Errorf("default pattern should not match when custom patterns are set")
	}
}

func TestParseEmptySpecUsesDefaults(t *testing.T) {
	rules := Parse("", "", testLogger())

	if rules.ErrorPatternCount() != len(DefaultErrorPatterns) {
		t.Errorf("ErrorPatternCount() = %d, want %d",
			rules.ErrorPatternCount(), len(DefaultErrorPatterns))
	}
	if rules.WarningPatternCount() != len(DefaultWarningPatterns) {
		t.Errorf("WarningPatternCount() = %d, want %d",
			rules.WarningPatternCount(), len(DefaultWarningPatterns))
	}
	if got := rules.Classify("ERROR: boom"); !got.Error {
		t.Errorf("defaults should classify ERROR lines")
	}
}

func TestParseMalformedPatternFallsBack(t *testing.T) {
	// "(" does not compile; the error class must degrade to defaults
	// while the valid warning spec is kept.
	rules := Parse("(", "caution", testLogger())

	if got := rules.Classify("panic: oh no"); !got.Error {
		t.Errorf("malformed error spec should fall back to defaults")
	}
	if got := rules.Classify("caution: wet floor"); !got.Warning {
		t.Errorf("valid warning spec should survive error-class fallback")
	}
	if rules.WarningPatternCount() != 1 {
		t.Errorf("WarningPatternCount() = %d, want 1", rules.WarningPatternCount())
	}
}

func TestSplitPatternList(t *testing.T) {
	testCases := []struct {
		spec string
		want []string
	}{
		{"", nil},
		{"a,b,c", []string{"a", "b", "c"}},
		{"a;b;c", []string{"a", "b", "c"}},
		{"a, b ; c", []string{"a", "b", "c"}},
		{" , ; ", nil},
		{"single", []string{"single"}},
	}

	for _, tc := range testCases {
		got := SplitPatternList(tc.spec)
		if strings.Join(got, "|") != strings.Join(tc.want, "|") {
			t.Errorf("SplitPatternList(%q) = %v, want %v", tc.spec, got, tc.want)
		}
	}
}

func TestRulesNeverEmpty(t *testing.T) {
	// Every construction path must leave both classes non-empty.
	for _, rules := range []*Rules{
		Default(),
		Parse("", "", testLogger()),
		Parse("(", "(", testLogger()),
		FromEnv(testLogger()),
	} {
		if rules.ErrorPatternCount() == 0 {
			t.Errorf("error pattern set is empty")
		}
		if rules.WarningPatternCount() == 0 {
			t.Errorf("warning pattern set is empty")
		}
	}
}
