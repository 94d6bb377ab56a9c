// Package tokenize implements the entity-aware lexer: it recognizes URLs,
// emails, dates and domains as atomic tokens and emits a lossless
// (word, punctuation-before, punctuation-after, spacing) stream, alongside
// a word-frequency map. Grounded on the ordered entity-pattern scanner in
// the original content processor, reimplemented as a single left-to-right
// sweep that always prefers the longest match starting at the current
// position (see the design notes on regex-union scanning).
package tokenize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Token is one lexical unit; PunctBefore ∥ Word ∥ PunctAfter ∥ Spacing
// reconstructs the run of text this token was taken from, with Word
// lowercased.
type Token struct {
	Word        string
	PunctBefore string
	PunctAfter  string
	Spacing     string
}

type entityPattern struct {
	re *regexp.Regexp
}

// Priority order: URL-with-scheme, email, written date, numeric date,
// ISO date, URL-without-scheme, bare domain. Earlier entries win ties.
var entityPatterns = []entityPattern{
	{regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://[^\s<>"'` + "`" + `]+`)},
	{regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	{regexp.MustCompile(`(?i)^(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}`)},
	{regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)},
	{regexp.MustCompile(`(?i)^www\.[a-z0-9.-]+\.[a-z]{2,}(?:/[^\s<>"'` + "`" + `]*)?`)},
	{regexp.MustCompile(`^(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}`)},
}

var wordRe = regexp.MustCompile(`^[\p{L}\p{N}'_-]+`)
var trailingRe = regexp.MustCompile(`^(\S*)(\s*)$`)
var gapRe = regexp.MustCompile(`^(\S*)(\s+)(\S*)$`)
var trailingNonSpaceRe = regexp.MustCompile(`(\S*)$`)

// Sanitize strips NUL and C0 control characters except TAB/LF/CR.
func Sanitize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r == 0 || (r < 0x20 && r != '\t' && r != '\n' && r != '\r') {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

type span struct {
	start, end int
	word       string
}

func scan(text string) []span {
	var spans []span
	pos := 0
	n := len(text)
	for pos < n {
		bestLen := -1
		var bestWord string
		for _, p := range entityPatterns {
			loc := p.re.FindStringIndex(text[pos:])
			if loc != nil && loc[0] == 0 && loc[1] > bestLen {
				bestLen = loc[1]
				bestWord = text[pos : pos+loc[1]]
			}
		}
		if bestLen > 0 {
			spans = append(spans, span{pos, pos + bestLen, strings.ToLower(bestWord)})
			pos += bestLen
			continue
		}
		if loc := wordRe.FindStringIndex(text[pos:]); loc != nil && loc[0] == 0 {
			spans = append(spans, span{pos, pos + loc[1], strings.ToLower(text[pos : pos+loc[1]])})
			pos += loc[1]
			continue
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		if size == 0 {
			size = 1
		}
		pos += size
	}
	return spans
}

// Tokenize converts text into a token stream and a word-frequency map.
func Tokenize(text string) ([]Token, map[string]int) {
	text = Sanitize(text)
	spans := scan(text)
	tokens := make([]Token, 0, len(spans))
	counts := make(map[string]int, len(spans))

	for i, s := range spans {
		var before string
		if i == 0 {
			m := trailingNonSpaceRe.FindStringSubmatch(text[:s.start])
			if m != nil {
				before = m[1]
			}
		} else {
			_, _, b := splitGap(text[spans[i-1].end:s.start])
			before = b
		}

		var after, spacing string
		if i == len(spans)-1 {
			after, spacing = splitTrailing(text[s.end:])
		} else {
			after, spacing, _ = splitGap(text[s.end:spans[i+1].start])
		}

		tokens = append(tokens, Token{
			Word:        s.word,
			PunctBefore: before,
			PunctAfter:  after,
			Spacing:     spacing,
		})
		counts[s.word]++
	}
	return tokens, counts
}

// TokenizeTitle returns only the ordered word list, used for Title rows.
func TokenizeTitle(text string) []string {
	spans := scan(Sanitize(text))
	words := make([]string, 0, len(spans))
	for _, s := range spans {
		words = append(words, s.word)
	}
	return words
}

func splitGap(gap string) (after, spacing, before string) {
	if gap == "" {
		return "", "", ""
	}
	if m := gapRe.FindStringSubmatch(gap); m != nil {
		return m[1], m[2], m[3]
	}
	return gap, "", ""
}

func splitTrailing(s string) (after, spacing string) {
	if m := trailingRe.FindStringSubmatch(s); m != nil {
		return m[1], m[2]
	}
	return s, ""
}
