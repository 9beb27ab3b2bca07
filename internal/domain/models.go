package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// TermPair is a single vocabulary entry of a lesson.
type TermPair struct {
	Source string `json:"source_term" yaml:"source_term"`
	Target string `json:"target_term" yaml:"target_term"`
}

// Lesson is an ordered set of term pairs for study.
type Lesson struct {
	ID      int        `json:"id" yaml:"id"`
	Title   string     `json:"title" yaml:"title"`
	Content []TermPair `json:"content" yaml:"content"`
}

// Lines renders the lesson content as numbered "source → target" lines.
func (l Lesson) Lines() []string {
	lines := make([]string, 0, len(l.Content))
	for i, pair := range l.Content {
		lines = append(lines, fmt.Sprintf("%d. %s → %s", i+1, pair.Source, pair.Target))
	}
	return lines
}

// Kind identifies how a question is answered.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindFillIn         Kind = "fill_in"
	KindTrueFalse      Kind = "true_false"
)

// Valid reports whether k is one of the supported question kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMultipleChoice, KindFillIn, KindTrueFalse:
		return true
	}
	return false
}

// Answer is a correct answer as declared in content. Boolean literals are
// stored as "true" / "false".
type Answer string

func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Answer(s)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = Answer(strconv.FormatBool(b))
		return nil
	}
	return fmt.Errorf("correct_answer must be a string or boolean, got %s", string(data))
}

func (a *Answer) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("correct_answer must be a scalar (line %d)", node.Line)
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*a = Answer(strconv.FormatBool(b))
		return nil
	}
	*a = Answer(node.Value)
	return nil
}

// Question is one step of a quiz.
type Question struct {
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Kind          Kind     `json:"kind" yaml:"kind"`
	Options       []string `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectAnswer Answer   `json:"correct_answer" yaml:"correct_answer"`
}

// AllowedOptions returns the declared options, defaulting to true/false for
// true_false questions that declare none. Fill-in questions have no options.
func (q Question) AllowedOptions() []string {
	switch q.Kind {
	case KindFillIn:
		return nil
	case KindTrueFalse:
		if len(q.Options) == 0 {
			return []string{"true", "false"}
		}
	}
	return q.Options
}

// Quiz is an ordered set of questions, optionally linked to a lesson.
type Quiz struct {
	ID        int        `json:"id" yaml:"id"`
	LessonID  *int       `json:"lesson_id,omitempty" yaml:"lesson_id,omitempty"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Turn is one entry of a chat conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ProgressSnapshot is the export/import format for lesson progress.
type ProgressSnapshot struct {
	Completed []int `json:"completed"`
}

// NormalizeAnswer trims and case-folds an answer for comparison.
func NormalizeAnswer(s string) string {
	// Casers keep state, so a fresh one is used per call.
	return cases.Fold().String(strings.TrimSpace(s))
}
