package wiki

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// sentenceGen draws a sentence that starts with a capitalized word and ends
// with a long lowercase word, so no abbreviation rule can apply to it.
func sentenceGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		first := rapid.StringMatching(`[A-Z][a-z]{2,8}`).Draw(t, "first")
		middle := rapid.SliceOfN(
			rapid.StringMatching(`[a-z]{1,8}|[0-9]{1,4}(\.[0-9]{1,2})?`),
			0, 6,
		).Draw(t, "middle")
		last := rapid.StringMatching(`[a-z]{9,12}`).Draw(t, "last")
		end := rapid.SampledFrom([]string{".", "!", "?", "...", `."`}).
			Draw(t, "end")

		words := append([]string{first}, middle...)
		words = append(words, last)

		return strings.Join(words, " ") + end
	})
}

// TestTruncateSentencesProperty checks that truncation yields exactly
// min(n, count) whole sentences and that shorter texts come back whole.
func TestTruncateSentencesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sentences := rapid.SliceOfN(sentenceGen(), 1, 12).
			Draw(t, "sentences")
		sep := rapid.SampledFrom([]string{" ", "  ", "\n", " \n"}).
			Draw(t, "sep")
		n := rapid.IntRange(1, MaxSentences).Draw(t, "n")

		text := strings.Join(sentences, sep)
		got := TruncateSentences(text, n)

		want := sentences
		if len(want) > n {
			want = want[:n]
		}

		if got != strings.Join(want, sep) {
			t.Fatalf("truncate(%d) = %q, want %q", n, got,
				strings.Join(want, sep))
		}

		split := SplitSentences(got)
		if len(split) != len(want) {
			t.Fatalf("got %d sentences, want %d", len(split),
				len(want))
		}
		for i := range want {
			if split[i] != want[i] {
				t.Fatalf("sentence %d = %q, want %q", i,
					split[i], want[i])
			}
		}

		if len(sentences) <= n && got != text {
			t.Fatalf("short text changed: %q != %q", got, text)
		}
	})
}

// trickySentenceGen draws a sentence whose last word before the period
// looks like an initial, a Roman numeral or an abbreviation that is also an
// ordinary word.
func trickySentenceGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		first := rapid.StringMatching(`[A-Z][a-z]{2,8}`).Draw(t, "first")
		middle := rapid.SliceOfN(
			rapid.StringMatching(`[a-z]{2,8}|[0-9]{1,4}`), 0, 4,
		).Draw(t, "middle")
		last := rapid.SampledFrom([]string{
			"I", "V", "X", "C", "II", "XIV", "Inc", "Ltd", "Corp",
			"no", "co", "Jr",
		}).Draw(t, "last")

		words := append([]string{first}, middle...)
		words = append(words, last)

		return strings.Join(words, " ") + "."
	})
}

// TestSplitTrickySentencesProperty checks that sentences ending in
// abbreviation-like words are still split when the next one starts with a
// capitalized word.
func TestSplitTrickySentencesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sentences := rapid.SliceOfN(
			rapid.OneOf(sentenceGen(), trickySentenceGen()), 1, 12,
		).Draw(t, "sentences")
		n := rapid.IntRange(1, MaxSentences).Draw(t, "n")

		text := strings.Join(sentences, " ")

		split := SplitSentences(text)
		if len(split) != len(sentences) {
			t.Fatalf("got %d sentences, want %d: %q", len(split),
				len(sentences), split)
		}

		want := sentences
		if len(want) > n {
			want = want[:n]
		}
		if got := TruncateSentences(text, n); got != strings.Join(want, " ") {
			t.Fatalf("truncate(%d) = %q, want %q", n, got,
				strings.Join(want, " "))
		}
	})
}

// stubSource is an in-memory PageSource for property tests.
type stubSource struct {
	page  Page
	links []string
}

func (s *stubSource) Search(context.Context, string) (SearchResult, error) {
	return SearchResult{}, nil
}

func (s *stubSource) Page(context.Context, string) (*Page, error) {
	page := s.page
	return &page, nil
}

// Links deliberately ignores limit so the fetcher's own bound is tested.
func (s *stubSource) Links(context.Context, string, int) ([]string, error) {
	return s.links, nil
}

func (s *stubSource) DisambiguationCandidates(context.Context,
	string) ([]string, error) {

	return nil, nil
}

// TestFetchLinksProperty checks that at most MaxLinks links are returned,
// as an in-order prefix of the upstream list.
func TestFetchLinksProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 40).Draw(t, "count")
		links := make([]string, count)
		for i := range links {
			links[i] = fmt.Sprintf("Link %d", i)
		}

		src := &stubSource{
			page:  Page{Title: "Topic", Extract: "Some text here."},
			links: links,
		}
		fetcher := NewFetcher(src, DefaultConfig(), nil)

		res, err := fetcher.Fetch(context.Background(), "Topic").Unpack()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := min(count, MaxLinks)
		if len(res.Links) != want {
			t.Fatalf("got %d links, want %d", len(res.Links), want)
		}
		for i, link := range res.Links {
			if link != links[i] {
				t.Fatalf("link %d = %q, want %q", i, link,
					links[i])
			}
		}
	})
}
