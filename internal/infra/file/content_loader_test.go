package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/romaisa914/lingo-translator/internal/content"
	"github.com/romaisa914/lingo-translator/internal/domain"
)

const lessonsJSON = `{"lessons": [
  {"id": 1, "title": "Greetings", "content": [
    {"source_term": "Hallo", "target_term": "Hello"},
    {"source_term": "Tschüss", "target_term": "Bye"}
  ]}
]}`

const quizzesYAML = `quizzes:
  - id: 1
    lesson_id: 1
    title: Greetings quiz
    questions:
      - prompt: What does "Hallo" mean?
        kind: multiple_choice
        options: [Hello, Bye]
        correct_answer: Hello
      - prompt: Tschüss means goodbye.
        kind: true_false
        correct_answer: true
`

func TestContentLoaderReadsJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	loader := NewContentLoader(
		writeFile(t, dir, "lessons.json", lessonsJSON),
		writeFile(t, dir, "quizzes.yaml", quizzesYAML),
	)

	lessons, err := loader.LoadLessons(context.Background())
	if err != nil {
		t.Fatalf("load lessons: %v", err)
	}
	if len(lessons) != 1 || len(lessons[0].Content) != 2 || lessons[0].Content[1].Target != "Bye" {
		t.Fatalf("unexpected lessons %+v", lessons)
	}

	quizzes, err := loader.LoadQuizzes(context.Background())
	if err != nil {
		t.Fatalf("load quizzes: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].LessonID == nil || *quizzes[0].LessonID != 1 {
		t.Fatalf("unexpected quizzes %+v", quizzes)
	}
	if got := quizzes[0].Questions[1].CorrectAnswer; got != "true" {
		t.Fatalf("expected boolean answer as \"true\", got %q", got)
	}
}

func TestContentLoaderFailures(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"missing":   filepath.Join(dir, "nope.json"),
		"malformed": writeFile(t, dir, "broken.json", `{"lessons": [`),
		"no key":    writeFile(t, dir, "empty.json", `{}`),
		"extension": writeFile(t, dir, "lessons.txt", lessonsJSON),
	}
	for name, path := range cases {
		loader := NewContentLoader(path, path)
		if _, err := loader.LoadLessons(context.Background()); !errors.Is(err, domain.ErrDataLoad) {
			t.Fatalf("%s: expected data load error, got %v", name, err)
		}
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestShippedContentIsValid(t *testing.T) {
	loader := NewContentLoader("../../../data/lessons.json", "../../../data/quizzes.json")
	lessons, err := loader.LoadLessons(context.Background())
	if err != nil {
		t.Fatalf("load lessons: %v", err)
	}
	quizzes, err := loader.LoadQuizzes(context.Background())
	if err != nil {
		t.Fatalf("load quizzes: %v", err)
	}
	if err := content.Validate(lessons, quizzes); err != nil {
		t.Fatalf("shipped content invalid: %v", err)
	}
}
