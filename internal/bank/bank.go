// Package bank loads and filters the trivia question bank.
package bank

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuiz/internal/model"
)

//go:embed questions.yaml
var builtinYAML []byte

var (
	// ErrEmptyBank is returned when a bank holds no questions.
	ErrEmptyBank = errors.New("question bank is empty")
	// ErrInvalidQuestion is returned when an entry misses required fields.
	ErrInvalidQuestion = errors.New("invalid question")
)

// Answers accepts either a single YAML string or a list of strings.
type Answers []string

// UnmarshalYAML normalizes scalar and sequence answers into a list.
func (a *Answers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*a = Answers{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*a = Answers(list)
		return nil
	default:
		return fmt.Errorf("line %d: answer must be a string or a list of strings", node.Line)
	}
}

// Entry is the on-disk form of a question.
type Entry struct {
	ID         int     `yaml:"id"`
	Question   string  `yaml:"question"`
	Answer     Answers `yaml:"answer"`
	Category   string  `yaml:"category"`
	Difficulty string  `yaml:"difficulty"`
}

// Bank is an immutable question catalog.
type Bank struct {
	questions  []model.Question
	categories []string
}

// Builtin returns the bank compiled into the binary.
func Builtin() (*Bank, error) {
	b, err := Parse(builtinYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse builtin bank: %w", err)
	}
	return b, nil
}

// Load reads a YAML bank from path. An empty path selects the builtin bank.
func Load(path string) (*Bank, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML bank.
func Parse(data []byte) (*Bank, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode bank: %w", err)
	}
	questions := make([]model.Question, 0, len(entries))
	for i, e := range entries {
		q, err := e.toQuestion()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}
	return New(questions)
}

// New builds a bank from questions, rejecting duplicate ids.
func New(questions []model.Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}
	seen := make(map[int]struct{}, len(questions))
	set := map[string]struct{}{}
	for _, q := range questions {
		if _, ok := seen[q.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
		set[q.Category] = struct{}{}
	}
	categories := make([]string, 0, len(set))
	for c := range set {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return &Bank{
		questions:  append([]model.Question(nil), questions...),
		categories: categories,
	}, nil
}

// Questions returns every question in bank order.
func (b *Bank) Questions() []model.Question {
	return b.questions
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Categories returns the distinct categories, sorted.
func (b *Bank) Categories() []string {
	return append([]string(nil), b.categories...)
}

func (e Entry) toQuestion() (model.Question, error) {
	text := strings.TrimSpace(e.Question)
	if text == "" {
		return model.Question{}, fmt.Errorf("%w: id %d has no question text", ErrInvalidQuestion, e.ID)
	}
	answers := make([]string, 0, len(e.Answer))
	for _, a := range e.Answer {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		answers = append(answers, a)
	}
	if len(answers) == 0 {
		return model.Question{}, fmt.Errorf("%w: id %d has no answer", ErrInvalidQuestion, e.ID)
	}
	category := strings.TrimSpace(e.Category)
	if category == "" {
		return model.Question{}, fmt.Errorf("%w: id %d has no category", ErrInvalidQuestion, e.ID)
	}
	difficulty, ok := ParseDifficulty(e.Difficulty)
	if !ok {
		return model.Question{}, fmt.Errorf("%w: id %d has unknown difficulty %q", ErrInvalidQuestion, e.ID, e.Difficulty)
	}
	return model.Question{
		ID:         e.ID,
		Text:       text,
		Answers:    answers,
		Category:   category,
		Difficulty: difficulty,
	}, nil
}

// ParseDifficulty matches a level name case-insensitively.
func ParseDifficulty(s string) (model.Difficulty, bool) {
	for _, d := range model.Difficulties {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}
