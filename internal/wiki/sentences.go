package wiki

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations are lower-cased words that never end a sentence when
// followed by a period, as in "Dr. Watson" or "approx. 3".
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "st": {},
	"mt": {}, "ft": {}, "vs": {}, "approx": {}, "ca": {}, "cf": {},
	"gen": {}, "gov": {}, "rev": {}, "lt": {}, "col": {}, "sgt": {},
	"capt": {}, "e.g": {}, "i.e": {},
}

// weakAbbreviations are lower-cased words that are also common at the end
// of a sentence ("Apple Inc.", "the answer was no."). The period after one
// only continues the sentence when the next word starts with a digit or a
// lowercase letter, as in "No. 5" or "est. 1890".
var weakAbbreviations = map[string]struct{}{
	"inc": {}, "ltd": {}, "corp": {}, "co": {}, "no": {}, "nos": {},
	"sr": {}, "jr": {}, "vol": {}, "fig": {}, "est": {}, "jan": {},
	"feb": {}, "mar": {}, "apr": {}, "aug": {}, "sep": {}, "sept": {},
	"oct": {}, "nov": {}, "dec": {}, "u.s": {}, "u.k": {}, "u.n": {},
	"a.d": {}, "b.c": {}, "ph.d": {},
}

// romanLetters double as Roman numerals ("World War I.", "Part V."), so a
// lone one is only read as an initial next to another initial.
const romanLetters = "IVXLCDM"

// isTerminal reports whether r can end a sentence.
func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// isCloser reports whether r may trail sentence punctuation and still
// belong to the sentence, as in `He said "stop."`.
func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '’', '”':
		return true
	}

	return false
}

func isWordBreak(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == '"' || r == '['
}

// lastWord splits prefix into its final word and everything before it.
func lastWord(prefix string) (string, string) {
	start := strings.LastIndexFunc(prefix, isWordBreak)
	return prefix[start+1:], prefix[:start+1]
}

// nextWord returns the first word of s, without leading quotes or
// brackets.
func nextWord(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	s = strings.TrimLeft(s, "\"'([“‘«")
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		s = s[:i]
	}

	return s
}

// isInitial reports whether word is a single capital followed by a
// period, as in "J.".
func isInitial(word string) bool {
	r, size := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r) && word[size:] == "."
}

// isCapitalized reports whether word starts with a capital and has more
// than one rune.
func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r) && utf8.RuneCountInString(word) > 1
}

// isLowerWord reports whether word starts with a lowercase letter and has
// no capitals later on. Words like "iPhone" are names and may start a
// sentence.
func isLowerWord(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsLower(r) && !strings.ContainsFunc(word, unicode.IsUpper)
}

func startsDigit(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsDigit(r)
}

// continues reports whether the terminal punctuation between before and
// after is part of the sentence instead of ending it. period is set when
// the punctuation run starts with a '.'.
func continues(before, after string, period bool) bool {
	next := nextWord(after)
	if next == "" {
		return false
	}
	if isLowerWord(next) {
		return true
	}
	if !period {
		return false
	}

	word, rest := lastWord(before)
	if word == "" {
		return false
	}

	lower := strings.ToLower(word)
	if _, ok := abbreviations[lower]; ok {
		return true
	}
	if _, ok := weakAbbreviations[lower]; ok {
		return startsDigit(next)
	}

	if !isInitial(word + ".") {
		return false
	}

	// An initial sits next to another initial ("C. S. Lewis") or between
	// two parts of a name ("Harry S. Truman").
	prev, _ := lastWord(strings.TrimRightFunc(rest, unicode.IsSpace))
	if isInitial(next) || isInitial(prev) {
		return true
	}
	if strings.Contains(romanLetters, word) {
		return false
	}

	return isCapitalized(prev) && isCapitalized(next)
}

// sentenceEnds returns the byte offsets directly after every sentence
// boundary in text.
//
// A boundary is a run of '.', '!' or '?' (plus any closing quotes or
// brackets) that is followed by whitespace or the end of the text, unless
// continues says the sentence goes on: the next word is lowercase, or the
// period follows an abbreviation or an initial.
func sentenceEnds(text string) []int {
	var ends []int
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminal(r) {
			i += size
			continue
		}

		end := i + size
		for end < len(text) {
			next, n := utf8.DecodeRuneInString(text[end:])
			if !isTerminal(next) && !isCloser(next) {
				break
			}
			end += n
		}

		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				i = end
				continue
			}
		}

		if continues(text[:i], text[end:], r == '.') {
			i = end
			continue
		}

		ends = append(ends, end)
		i = end
	}

	return ends
}

// SplitSentences splits text into trimmed sentences. Trailing text without
// terminal punctuation counts as a final sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var (
		sentences []string
		start     int
	)
	for _, end := range sentenceEnds(text) {
		sentences = append(sentences, strings.TrimSpace(text[start:end]))
		start = end
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

// TruncateSentences returns the leading n sentences of text, cut at a
// sentence boundary. If text holds n sentences or fewer, the whole
// (trimmed) text is returned.
func TruncateSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 {
		return ""
	}

	ends := sentenceEnds(text)
	if len(ends) < n {
		return text
	}

	return strings.TrimSpace(text[:ends[n-1]])
}
