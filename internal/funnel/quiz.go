// Package funnel implements the "get started" onboarding quiz: a fixed list
// of multiple-choice questions walked one at a time, ending on the dashboard.
package funnel

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QuestionType is the only kind the funnel asks.
const QuestionType = "multiple-choice"

// Question is one step of the funnel.
type Question struct {
	ID       int      `yaml:"id" json:"id"`
	Type     string   `yaml:"type" json:"type"`
	Sentence string   `yaml:"sentence" json:"sentence"`
	Options  []string `yaml:"options" json:"options"`
}

// HasOption reports whether option is one of q's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Quiz is the ordered question list.
type Quiz struct {
	Questions []Question `yaml:"questions" json:"questions"`
}

// Len returns the number of questions.
func (q Quiz) Len() int {
	return len(q.Questions)
}

// DefaultQuiz returns the built-in onboarding questions.
func DefaultQuiz() Quiz {
	return Quiz{Questions: []Question{
		{
			ID:       1,
			Type:     QuestionType,
			Sentence: "What's your primary goal for joining our passive income community?",
			Options: []string{
				"Learn strategies to generate passive income",
				"Connect with like-minded individuals",
				"Access expert insights and resources",
				"Find accountability partners for my financial journey",
				"Other",
			},
		},
		{
			ID:       2,
			Type:     QuestionType,
			Sentence: "What's your biggest challenge in creating passive income streams?",
			Options: []string{
				"Lack of knowledge about available options",
				"Limited time to research and implement strategies",
				"Difficulty in choosing the right opportunities",
				"Fear of financial risks",
				"Other",
			},
		},
		{
			ID:       3,
			Type:     QuestionType,
			Sentence: "Which feature of our platform would you find most valuable?",
			Options: []string{
				"Step-by-step guides on various passive income methods",
				"Community forums to share experiences and ask questions",
				"Expert webinars and Q&A sessions",
				"Tools to track and optimize your passive income streams",
				"Other",
			},
		},
	}}
}

// LoadQuiz reads a YAML question file. An empty path returns DefaultQuiz.
func LoadQuiz(path string) (Quiz, error) {
	if path == "" {
		return DefaultQuiz(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Quiz{}, fmt.Errorf("read quiz %s: %w", path, err)
	}
	var q Quiz
	if err := yaml.Unmarshal(data, &q); err != nil {
		return Quiz{}, fmt.Errorf("parse quiz %s: %w", path, err)
	}
	for i := range q.Questions {
		if q.Questions[i].Type == "" {
			q.Questions[i].Type = QuestionType
		}
	}
	if err := q.Validate(); err != nil {
		return Quiz{}, fmt.Errorf("invalid quiz %s: %w", path, err)
	}
	return q, nil
}

// Validate checks that every question can be answered.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return errors.New("quiz has no questions")
	}
	var errs []error
	ids := make(map[int]bool, len(q.Questions))
	for i, question := range q.Questions {
		if ids[question.ID] {
			errs = append(errs, fmt.Errorf("question %d: duplicate id %d", i+1, question.ID))
		}
		ids[question.ID] = true
		if question.Type != QuestionType {
			errs = append(errs, fmt.Errorf("question %d: unsupported type %q", i+1, question.Type))
		}
		if question.Sentence == "" {
			errs = append(errs, fmt.Errorf("question %d: sentence is required", i+1))
		}
		if len(question.Options) < 2 {
			errs = append(errs, fmt.Errorf("question %d: at least two options are required", i+1))
		}
		seen := make(map[string]bool, len(question.Options))
		for _, o := range question.Options {
			if o == "" {
				errs = append(errs, fmt.Errorf("question %d: empty option", i+1))
			} else if seen[o] {
				errs = append(errs, fmt.Errorf("question %d: duplicate option %q", i+1, o))
			}
			seen[o] = true
		}
	}
	return errors.Join(errs...)
}
