// internal/screening/textnorm/normalizer.go
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"resume-screener/internal/models"
)

const defaultMaxSemanticChars = 2000

// Normalizer prepares raw documents for the two estimation paths. The
// lexical path is aggressive (stopwords out, tokens folded); the semantic
// path preserves sentence structure so contextual embeddings stay useful.
type Normalizer struct {
	maxSemanticChars int
}

func New() *Normalizer {
	return &Normalizer{maxSemanticChars: defaultMaxSemanticChars}
}

// NewWithLimit overrides the semantic truncation limit. Values below 1 fall
// back to the default.
func NewWithLimit(maxChars int) *Normalizer {
	if maxChars < 1 {
		maxChars = defaultMaxSemanticChars
	}
	return &Normalizer{maxSemanticChars: maxChars}
}

// CleanUnicode applies NFKC so fullwidth and composed variants compare equal.
func CleanUnicode(s string) string {
	return norm.NFKC.String(s)
}

// Words splits text into lowercase alphanumeric tokens without any
// filtering. Used for statistics and keyword frequency counting.
func Words(text string) []string {
	text = strings.ToLower(CleanUnicode(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// LexicalTokens produces the token stream the TF-IDF estimator consumes:
// lowercased, punctuation stripped, stopwords removed, light lemma folding,
// tokens shorter than 2 runes dropped.
func (n *Normalizer) LexicalTokens(text string) []string {
	raw := Words(text)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if IsStopword(tok) {
			continue
		}
		tok = foldLemma(tok)
		if len([]rune(tok)) < 2 {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Lexical returns the normalized document as a single string.
func (n *Normalizer) Lexical(text string) string {
	return strings.Join(n.LexicalTokens(text), " ")
}

// Semantic lightly normalizes text for the embedding backend: NFKC, trimmed,
// whitespace collapsed, truncated to the configured limit. The second return
// reports whether truncation happened.
func (n *Normalizer) Semantic(text string) (string, bool) {
	text = strings.Join(strings.Fields(CleanUnicode(text)), " ")
	runes := []rune(text)
	if len(runes) <= n.maxSemanticChars {
		return text, false
	}
	return string(runes[:n.maxSemanticChars]), true
}

// foldLemma folds regular plurals and a few inflections. It is deliberately
// rule-based; anything heavier belongs in the semantic path.
func foldLemma(tok string) string {
	switch {
	case strings.HasSuffix(tok, "ies") && len(tok) > 4:
		return tok[:len(tok)-3] + "y"
	case strings.HasSuffix(tok, "sses"):
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "ss"), strings.HasSuffix(tok, "us"), strings.HasSuffix(tok, "is"):
		return tok
	case strings.HasSuffix(tok, "s") && len(tok) > 3:
		return tok[:len(tok)-1]
	}
	return tok
}

// Stats computes surface statistics for one raw document. The readability
// value is a simplified Flesch-style score clamped to 0..100.
func Stats(text string) models.TextStats {
	words := Words(text)
	unique := make(map[string]struct{}, len(words))
	totalLen := 0
	for _, w := range words {
		unique[w] = struct{}{}
		totalLen += len([]rune(w))
	}

	sentences := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences == 0 && len(words) > 0 {
		sentences = 1
	}

	st := models.TextStats{
		Words:       len(words),
		Sentences:   sentences,
		Characters:  len([]rune(text)),
		UniqueWords: len(unique),
	}
	if len(words) > 0 {
		st.AvgWordLength = float64(totalLen) / float64(len(words))
		wordsPerSentence := float64(len(words)) / float64(sentences)
		readability := 206.835 - 1.015*wordsPerSentence - 84.6*(st.AvgWordLength/4.7)
		if readability < 0 {
			readability = 0
		}
		if readability > 100 {
			readability = 100
		}
		st.Readability = readability
	}
	return st
}
