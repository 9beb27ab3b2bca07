package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/romaisa914/lingo-translator/internal/domain"
	"gopkg.in/yaml.v3"
)

// ContentLoader reads lessons and quizzes from JSON or YAML documents on disk.
// The format is picked from the file extension (.json, .yaml, .yml).
type ContentLoader struct {
	lessonsPath string
	quizzesPath string
}

func NewContentLoader(lessonsPath, quizzesPath string) *ContentLoader {
	return &ContentLoader{lessonsPath: lessonsPath, quizzesPath: quizzesPath}
}

type lessonsDocument struct {
	Lessons []domain.Lesson `json:"lessons" yaml:"lessons"`
}

type quizzesDocument struct {
	Quizzes []domain.Quiz `json:"quizzes" yaml:"quizzes"`
}

func (l *ContentLoader) LoadLessons(ctx context.Context) ([]domain.Lesson, error) {
	var doc lessonsDocument
	if err := decodeFile(ctx, l.lessonsPath, &doc); err != nil {
		return nil, err
	}
	if doc.Lessons == nil {
		return nil, domain.DataLoadError(l.lessonsPath, fmt.Errorf("no \"lessons\" key"))
	}
	return doc.Lessons, nil
}

func (l *ContentLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var doc quizzesDocument
	if err := decodeFile(ctx, l.quizzesPath, &doc); err != nil {
		return nil, err
	}
	if doc.Quizzes == nil {
		return nil, domain.DataLoadError(l.quizzesPath, fmt.Errorf("no \"quizzes\" key"))
	}
	return doc.Quizzes, nil
}

func decodeFile(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.DataLoadError(path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(raw, out)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, out)
	default:
		err = fmt.Errorf("unsupported extension %q", ext)
	}
	if err != nil {
		return domain.DataLoadError(path, err)
	}
	return nil
}
