// Package classify provides the text-classification add-on layer: category
// confidence scoring for free-text responses and the yes/no question helper
// built on top of it. The model behind the Classifier interface is an opaque,
// swappable dependency; the bundled naive-Bayes implementation is the
// default.
package classify

import (
	"errors"
	"fmt"
)

// Category is a classification label.
type Category string

// The categories recognized by this layer.
const (
	Yes      Category = "YES"
	No       Category = "NO"
	Question Category = "QUESTION"
)

// Categories returns all recognized categories.
func Categories() []Category {
	return []Category{Yes, No, Question}
}

// Classifier scores a piece of text against every category. Confidences are
// independent per category, each in [0, 1].
type Classifier interface {
	Classify(text string) map[Category]float64
}

// ErrInvalidThreshold indicates a confidence threshold outside the open
// interval (0, 1). This is a caller contract error.
var ErrInvalidThreshold = errors.New("classify: threshold must be strictly between 0 and 1")

// NoClassificationError indicates the text could not be classified as a yes
// or a no with sufficient confidence. It carries the original text so
// callers can prompt again or degrade gracefully.
type NoClassificationError struct {
	// Text is the text which could not be classified.
	Text string
}

func (e *NoClassificationError) Error() string {
	return fmt.Sprintf("classify: could not classify %q as YES or NO", e.Text)
}
