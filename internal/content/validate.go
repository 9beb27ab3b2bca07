package content

import (
	"fmt"

	"github.com/romaisa914/lingo-translator/internal/domain"
)

// Validate checks loaded content and reports the first problem as a DataLoadError.
func Validate(lessons []domain.Lesson, quizzes []domain.Quiz) error {
	seenLessons := make(map[int]struct{}, len(lessons))
	for i, l := range lessons {
		where := fmt.Sprintf("lesson #%d (id %d)", i+1, l.ID)
		if l.ID <= 0 {
			return domain.DataLoadError(where, fmt.Errorf("id must be positive"))
		}
		if _, dup := seenLessons[l.ID]; dup {
			return domain.DataLoadError(where, fmt.Errorf("duplicate lesson id"))
		}
		seenLessons[l.ID] = struct{}{}
		if l.Title == "" {
			return domain.DataLoadError(where, fmt.Errorf("missing title"))
		}
		if len(l.Content) == 0 {
			return domain.DataLoadError(where, fmt.Errorf("no term pairs"))
		}
		for j, pair := range l.Content {
			if pair.Source == "" || pair.Target == "" {
				return domain.DataLoadError(where, fmt.Errorf("term pair %d is incomplete", j+1))
			}
		}
	}

	seenQuizzes := make(map[int]struct{}, len(quizzes))
	for i, q := range quizzes {
		where := fmt.Sprintf("quiz #%d (id %d)", i+1, q.ID)
		if q.ID <= 0 {
			return domain.DataLoadError(where, fmt.Errorf("id must be positive"))
		}
		if _, dup := seenQuizzes[q.ID]; dup {
			return domain.DataLoadError(where, fmt.Errorf("duplicate quiz id"))
		}
		seenQuizzes[q.ID] = struct{}{}
		if q.Title == "" {
			return domain.DataLoadError(where, fmt.Errorf("missing title"))
		}
		if q.LessonID != nil {
			if _, ok := seenLessons[*q.LessonID]; !ok {
				return domain.DataLoadError(where, fmt.Errorf("lesson_id %d does not exist", *q.LessonID))
			}
		}
		if len(q.Questions) == 0 {
			return domain.DataLoadError(where, fmt.Errorf("empty question list"))
		}
		for j, question := range q.Questions {
			if err := validateQuestion(question); err != nil {
				return domain.DataLoadError(fmt.Sprintf("%s question %d", where, j+1), err)
			}
		}
	}
	return nil
}

func validateQuestion(q domain.Question) error {
	if !q.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", q.Kind)
	}
	if q.Prompt == "" {
		return fmt.Errorf("missing prompt")
	}
	if domain.NormalizeAnswer(string(q.CorrectAnswer)) == "" {
		return fmt.Errorf("missing correct_answer")
	}

	switch q.Kind {
	case domain.KindMultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("multiple choice question without options")
		}
	case domain.KindTrueFalse:
		a := domain.NormalizeAnswer(string(q.CorrectAnswer))
		if a != "true" && a != "false" {
			return fmt.Errorf("true/false answer must be true or false, got %q", q.CorrectAnswer)
		}
	case domain.KindFillIn:
		return nil
	}

	want := domain.NormalizeAnswer(string(q.CorrectAnswer))
	for _, opt := range q.AllowedOptions() {
		if domain.NormalizeAnswer(opt) == want {
			return nil
		}
	}
	return fmt.Errorf("correct_answer %q is not among the options", q.CorrectAnswer)
}
