package classify

import (
	"context"

	"github.com/Slowki/chattermouth/pkg/interaction"
)

// DefaultThreshold is the confidence required before a reply counts as a yes
// or a no.
const DefaultThreshold = 0.75

// ClassifyYesNo classifies text as a yes-type or no-type response. It
// returns true when the YES confidence meets the threshold and is at least
// the NO confidence, false when the NO confidence meets the threshold, and
// a *NoClassificationError otherwise. The threshold must be strictly between
// 0 and 1; that contract is checked before any classification happens.
func ClassifyYesNo(clf Classifier, text string, threshold float64) (bool, error) {
	if threshold <= 0 || threshold >= 1 {
		return false, ErrInvalidThreshold
	}

	scores := clf.Classify(text)
	switch {
	case scores[Yes] >= threshold && scores[Yes] >= scores[No]:
		return true, nil
	case scores[No] >= threshold:
		return false, nil
	default:
		return false, &NoClassificationError{Text: text}
	}
}

// AskYesOrNo asks the user a yes-or-no question through the active
// interaction context and classifies their reply. The threshold contract is
// checked before anything is sent.
func AskYesOrNo(ctx context.Context, clf Classifier, question string, threshold float64) (bool, error) {
	if threshold <= 0 || threshold >= 1 {
		return false, ErrInvalidThreshold
	}

	msg, err := interaction.Ask(ctx, question)
	if err != nil {
		return false, err
	}
	return ClassifyYesNo(clf, msg.Content, threshold)
}
