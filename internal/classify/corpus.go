package classify

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Example is one labeled training entry. An entry may carry several
// categories ("Yes but how?" is both YES and QUESTION) or none at all;
// unlabeled entries teach the model what unaligned text looks like.
type Example struct {
	Text       string     `yaml:"text"`
	Categories []Category `yaml:"categories"`
}

// Has reports whether the example carries the given category.
func (e Example) Has(cat Category) bool {
	return slices.Contains(e.Categories, cat)
}

// DefaultCorpus returns the built-in seed training data.
func DefaultCorpus() []Example {
	yes := func(text string) Example { return Example{Text: text, Categories: []Category{Yes}} }
	no := func(text string) Example { return Example{Text: text, Categories: []Category{No}} }
	question := func(text string) Example { return Example{Text: text, Categories: []Category{Question}} }
	unaligned := func(text string) Example { return Example{Text: text} }

	return []Example{
		yes("absolutely"),
		yes("Affirmative"),
		yes("I agree"),
		yes("I think so"),
		yes("it does"),
		yes("it doesn't"),
		yes("sure"),
		yes("yea"),
		yes("yeah"),
		yes("yep"),
		yes("yeppers"),
		yes("yes 🙂"),
		yes("yes it does"),
		yes("yes it does"),
		yes("yes"),
		yes("yup"),
		yes("👍"),

		no("I disagree"),
		no("I don't think so"),
		no("it does not"),
		no("it doesn't"),
		no("nah"),
		no("naw"),
		no("negative"),
		no("no 🙁"),
		no("no but it might have made it a bit better"),
		no("no thanks"),
		no("no"),
		no("nope"),
		no("not really"),
		no("👎"),

		question("Do you think that's a good idea"),
		question("how do I do that?"),
		question("how"),
		question("like, why though?"),
		question("what?"),
		question("what"),
		question("where is that?"),
		question("where"),
		question("who"),
		question("why"),
		question("wut"),
		{Text: "Yes but how?", Categories: []Category{Question, Yes}},

		unaligned("I don't know"),
		unaligned("I like both coffee and donuts"),
		unaligned("It's all on fire!"),
		unaligned("maybe"),
		unaligned("The quick dog jumped over the angry fox"),
	}
}

// LoadCorpus reads training examples from a YAML file: a list of entries
// with a text and an optional list of categories.
func LoadCorpus(path string) ([]Example, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classify: reading corpus %s: %w", path, err)
	}

	var examples []Example
	if err := yaml.Unmarshal(raw, &examples); err != nil {
		return nil, fmt.Errorf("classify: parsing corpus %s: %w", path, err)
	}
	if err := validateExamples(examples); err != nil {
		return nil, fmt.Errorf("classify: corpus %s: %w", path, err)
	}
	return examples, nil
}

func validateExamples(examples []Example) error {
	known := Categories()
	for i, ex := range examples {
		if ex.Text == "" {
			return fmt.Errorf("entry %d: empty text", i)
		}
		for _, cat := range ex.Categories {
			if !slices.Contains(known, cat) {
				return fmt.Errorf("entry %d: unknown category %q", i, cat)
			}
		}
	}
	return nil
}
