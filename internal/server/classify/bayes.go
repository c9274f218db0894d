// Package classify suggests a category for a description based on the user's
// own history, using a naive bayesian classifier. It backs up alias matching:
// the suggester is only consulted when no alias fired.
package classify

import (
	"github.com/jbrukh/bayesian"

	"github.com/aguerraochoa/Speakance-sub000/internal/textnorm"
)

// Suggester wraps a classifier trained on (description, category) history.
type Suggester struct {
	classes []bayesian.Class
	cl      *bayesian.Classifier
}

// NewSuggester trains on the user's historical rows: category name to the
// descriptions filed under it. At least two categories with data are needed;
// otherwise the suggester stays inert.
func NewSuggester(history map[string][]string) *Suggester {
	var classes []bayesian.Class
	for category, descs := range history {
		if len(descs) == 0 {
			continue
		}
		classes = append(classes, bayesian.Class(category))
	}
	if len(classes) < 2 {
		return &Suggester{}
	}

	cl := bayesian.NewClassifierTfIdf(classes...)
	for _, class := range classes {
		for _, desc := range history[string(class)] {
			cl.Learn(textnorm.Tokenize(desc), class)
		}
	}
	cl.ConvertTermsFreqToTfIdf()

	return &Suggester{classes: classes, cl: cl}
}

// Suggest returns the most likely category for text, or "" when the model is
// inert or the input carries no tokens.
func (s *Suggester) Suggest(text string) string {
	if s.cl == nil {
		return ""
	}
	terms := textnorm.Tokenize(text)
	if len(terms) == 0 {
		return ""
	}

	scores, best, _ := s.cl.LogScores(terms)
	if len(scores) == 0 {
		return ""
	}
	return string(s.classes[best])
}
