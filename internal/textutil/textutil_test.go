package textutil

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := Normalize("  Breaking   NEWS\n today ")
	if got != "breaking news today" {
		t.Fatalf("unexpected normalization: %q", got)
	}

	if Normalize("   ") != "" {
		t.Fatal("expected blank input to normalize to empty string")
	}
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	got := StripMarkup(`<p>Summit <b>announced</b> in Geneva</p>`)
	if got != "Summit announced in Geneva" {
		t.Fatalf("unexpected stripped text: %q", got)
	}

	plain := "no markup here"
	if StripMarkup(plain) != plain {
		t.Fatal("plain text should pass through unchanged")
	}
}

func TestSortTokens(t *testing.T) {
	t.Parallel()

	a := SortTokens("gamma Alpha beta")
	b := SortTokens("beta gamma alpha")
	if a != b {
		t.Fatalf("token-sort forms differ: %q vs %q", a, b)
	}
	if a != "alpha beta gamma" {
		t.Fatalf("unexpected sorted form: %q", a)
	}
}
