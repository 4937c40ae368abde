package classify

import (
	"math"
	"strings"
	"unicode"
)

// defaultAlpha is the additive smoothing constant. Small enough that a word
// seen even once in a category outweighs the prior for short replies.
const defaultAlpha = 0.1

// catModel holds the per-category counts of a one-vs-rest naive Bayes model.
type catModel struct {
	posDocs   float64
	negDocs   float64
	posTokens map[string]float64
	negTokens map[string]float64
	posTotal  float64
	negTotal  float64
}

// Bayes is a multi-label naive Bayes text classifier: one independent binary
// (category vs. rest) model per category, so confidences do not sum to 1
// across categories. Training is a deterministic counting pass.
type Bayes struct {
	alpha  float64
	vocab  map[string]struct{}
	models map[Category]*catModel
}

// Compile-time interface check.
var _ Classifier = (*Bayes)(nil)

// Train builds a classifier from labeled examples.
func Train(examples []Example) *Bayes {
	b := &Bayes{
		alpha:  defaultAlpha,
		vocab:  make(map[string]struct{}),
		models: make(map[Category]*catModel),
	}
	for _, cat := range Categories() {
		b.models[cat] = &catModel{
			posTokens: make(map[string]float64),
			negTokens: make(map[string]float64),
		}
	}

	for _, ex := range examples {
		tokens := tokenize(ex.Text)
		for _, tok := range tokens {
			b.vocab[tok] = struct{}{}
		}

		for _, cat := range Categories() {
			m := b.models[cat]
			if ex.Has(cat) {
				m.posDocs++
				for _, tok := range tokens {
					m.posTokens[tok]++
					m.posTotal++
				}
			} else {
				m.negDocs++
				for _, tok := range tokens {
					m.negTokens[tok]++
					m.negTotal++
				}
			}
		}
	}
	return b
}

// Classify scores text against every category.
func (b *Bayes) Classify(text string) map[Category]float64 {
	tokens := tokenize(text)
	scores := make(map[Category]float64, len(b.models))
	for cat, m := range b.models {
		scores[cat] = b.score(m, tokens)
	}
	return scores
}

// score computes P(category | tokens) for one binary model in log space.
func (b *Bayes) score(m *catModel, tokens []string) float64 {
	total := m.posDocs + m.negDocs
	if total == 0 || m.posDocs == 0 {
		return 0
	}
	if m.negDocs == 0 {
		return 1
	}

	vocabSize := float64(len(b.vocab))
	logPos := math.Log(m.posDocs / total)
	logNeg := math.Log(m.negDocs / total)
	for _, tok := range tokens {
		// Tokens never seen in training carry no evidence either way, yet
		// smoothing would tilt them toward whichever side has the smaller
		// corpus. Skip them so unknown text falls back to the prior.
		if _, ok := b.vocab[tok]; !ok {
			continue
		}
		logPos += math.Log((m.posTokens[tok] + b.alpha) / (m.posTotal + b.alpha*vocabSize))
		logNeg += math.Log((m.negTokens[tok] + b.alpha) / (m.negTotal + b.alpha*vocabSize))
	}

	// posterior = exp(logPos) / (exp(logPos) + exp(logNeg)), computed
	// stably as a logistic of the difference.
	return 1 / (1 + math.Exp(logNeg-logPos))
}

// tokenize lowercases the text and splits it into runs of letters and
// digits. Symbol runes (emoji and the like) are kept as single-rune tokens:
// the seed corpus leans on 👍 and 👎.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		case unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}
