// Package curriculum decodes lesson catalogs authored as YAML or XLSX and fetches them
// from local disk or MinIO.
package curriculum

import (
	"ctlab_backend/internal/model"
	"errors"
	"fmt"
	"strings"
)

type Catalog struct {
	Lessons []LessonSpec `yaml:"lessons"`
}

type LessonSpec struct {
	OrderNumber   int            `yaml:"order_number"`
	Title         string         `yaml:"title"`
	Description   string         `yaml:"description"`
	Level         string         `yaml:"level"`
	Duration      string         `yaml:"duration"`
	Objectives    []string       `yaml:"objectives"`
	Prerequisites []string       `yaml:"prerequisites"`
	Topics        []TopicSpec    `yaml:"topics"`
	KeyConcepts   []ConceptSpec  `yaml:"key_concepts"`
	Questions     []QuestionSpec `yaml:"questions"`
}

type TopicSpec struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

type ConceptSpec struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Example     string `yaml:"example"`
}

type QuestionSpec struct {
	// Number defaults to the question's position in the list.
	Number  int          `yaml:"number"`
	Text    string       `yaml:"text"`
	Type    string       `yaml:"type"`
	Options []OptionSpec `yaml:"options"`
}

type OptionSpec struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// Normalize fills defaulted fields in place: question numbers and types.
func (c *Catalog) Normalize() {
	for i := range c.Lessons {
		l := &c.Lessons[i]
		l.Title = strings.TrimSpace(l.Title)
		for j := range l.Questions {
			q := &l.Questions[j]
			if q.Number == 0 {
				q.Number = j + 1
			}
			q.Type = strings.ToLower(strings.TrimSpace(q.Type))
			if q.Type == "" {
				q.Type = string(model.MultipleChoice)
			}
		}
	}
}

// Validate reports every problem in the catalog at once.
func (c *Catalog) Validate() error {
	if len(c.Lessons) == 0 {
		return errors.New("catalog has no lessons")
	}

	var errs []error
	seenOrder := make(map[int]bool, len(c.Lessons))
	for i, l := range c.Lessons {
		where := fmt.Sprintf("lesson %d (order %d)", i+1, l.OrderNumber)
		if l.OrderNumber <= 0 {
			errs = append(errs, fmt.Errorf("%s: order_number must be positive", where))
		} else if seenOrder[l.OrderNumber] {
			errs = append(errs, fmt.Errorf("%s: duplicate order_number", where))
		}
		seenOrder[l.OrderNumber] = true

		if l.Title == "" {
			errs = append(errs, fmt.Errorf("%s: title is required", where))
		}

		seenNumber := make(map[int]bool, len(l.Questions))
		for _, q := range l.Questions {
			qwhere := fmt.Sprintf("%s question %d", where, q.Number)
			if seenNumber[q.Number] {
				errs = append(errs, fmt.Errorf("%s: duplicate question number", qwhere))
			}
			seenNumber[q.Number] = true
			errs = append(errs, validateQuestion(qwhere, q)...)
		}
	}
	return errors.Join(errs...)
}

func validateQuestion(where string, q QuestionSpec) []error {
	var errs []error
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, fmt.Errorf("%s: text is required", where))
	}

	switch model.QuestionType(q.Type) {
	case model.MultipleChoice:
	case model.TrueFalse:
		if len(q.Options) != 2 {
			errs = append(errs, fmt.Errorf("%s: true_false needs exactly 2 options", where))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unknown type %q", where, q.Type))
	}

	if len(q.Options) < 2 {
		errs = append(errs, fmt.Errorf("%s: needs at least 2 options", where))
	}
	correct := 0
	for _, o := range q.Options {
		if strings.TrimSpace(o.Text) == "" {
			errs = append(errs, fmt.Errorf("%s: option text is required", where))
		}
		if o.Correct {
			correct++
		}
	}
	if correct == 0 {
		errs = append(errs, fmt.Errorf("%s: no correct option", where))
	}
	return errs
}

// Models converts the catalog into models ready for import.
func (c *Catalog) Models() []model.Lesson {
	lessons := make([]model.Lesson, len(c.Lessons))
	for i, entry := range c.Lessons {
		lesson := model.Lesson{
			OrderNumber: entry.OrderNumber,
			Title:       entry.Title,
			Description: entry.Description,
			Level:       entry.Level,
			Duration:    entry.Duration,
		}
		for j, o := range entry.Objectives {
			lesson.Objectives = append(lesson.Objectives, model.LessonObjective{Objective: o, Position: j})
		}
		for j, p := range entry.Prerequisites {
			lesson.Prerequisites = append(lesson.Prerequisites, model.LessonPrerequisite{Prerequisite: p, Position: j})
		}
		for j, t := range entry.Topics {
			lesson.Topics = append(lesson.Topics, model.LessonTopic{
				Title:       t.Title,
				Description: t.Description,
				Icon:        t.Icon,
				Position:    j,
			})
		}
		for j, k := range entry.KeyConcepts {
			lesson.KeyConcepts = append(lesson.KeyConcepts, model.LessonKeyConcept{
				Title:       k.Title,
				Description: k.Description,
				Example:     k.Example,
				Position:    j,
			})
		}
		for _, q := range entry.Questions {
			question := model.QuizQuestion{
				QuestionNumber: q.Number,
				QuestionText:   q.Text,
				Type:           model.QuestionType(q.Type),
			}
			for j, o := range q.Options {
				question.Options = append(question.Options, model.QuizOption{
					Text:      o.Text,
					IsCorrect: o.Correct,
					Position:  j,
				})
			}
			lesson.Questions = append(lesson.Questions, question)
		}
		lessons[i] = lesson
	}
	return lessons
}
