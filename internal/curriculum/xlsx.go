package curriculum

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	LessonsSheet   = "lessons"
	QuestionsSheet = "questions"

	listSeparator  = ";"
	fieldSeparator = "|"
)

// DecodeXLSX reads a workbook with a "lessons" sheet and an optional "questions" sheet.
// The first row of each sheet names the columns.
//
// lessons: order_number, title, description, level, duration, objectives, prerequisites,
// topics, key_concepts. List cells are ";" separated; topics and key concepts use
// "title|description|icon" and "title|description|example".
//
// questions: lesson_order, number, text, type, options, correct. options is ";" separated and
// correct lists option letters ("A", "B;D").
func DecodeXLSX(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	lessonRows, err := readSheet(f, LessonsSheet)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{}
	byOrder := make(map[int]int)
	for i, row := range lessonRows {
		order, err := atoi(row.get("order_number"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: order_number: %w", LessonsSheet, i+2, err)
		}
		lesson := LessonSpec{
			OrderNumber:   order,
			Title:         row.get("title"),
			Description:   row.get("description"),
			Level:         row.get("level"),
			Duration:      row.get("duration"),
			Objectives:    splitList(row.get("objectives")),
			Prerequisites: splitList(row.get("prerequisites")),
		}
		for _, item := range splitList(row.get("topics")) {
			parts := splitFields(item, 3)
			lesson.Topics = append(lesson.Topics, TopicSpec{Title: parts[0], Description: parts[1], Icon: parts[2]})
		}
		for _, item := range splitList(row.get("key_concepts")) {
			parts := splitFields(item, 3)
			lesson.KeyConcepts = append(lesson.KeyConcepts, ConceptSpec{Title: parts[0], Description: parts[1], Example: parts[2]})
		}
		byOrder[order] = len(catalog.Lessons)
		catalog.Lessons = append(catalog.Lessons, lesson)
	}

	idx, err := f.GetSheetIndex(QuestionsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sheet %q: %w", QuestionsSheet, err)
	}
	if idx < 0 {
		return catalog, nil
	}
	questionRows, err := readSheet(f, QuestionsSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range questionRows {
		line := i + 2
		order, err := atoi(row.get("lesson_order"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: lesson_order: %w", QuestionsSheet, line, err)
		}
		idx, ok := byOrder[order]
		if !ok {
			return nil, fmt.Errorf("%s row %d: no lesson with order %d", QuestionsSheet, line, order)
		}

		number := 0
		if raw := row.get("number"); raw != "" {
			if number, err = atoi(raw); err != nil {
				return nil, fmt.Errorf("%s row %d: number: %w", QuestionsSheet, line, err)
			}
		}

		question := QuestionSpec{
			Number: number,
			Text:   row.get("text"),
			Type:   row.get("type"),
		}
		correct, err := parseLetters(row.get("correct"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: correct: %w", QuestionsSheet, line, err)
		}
		for j, text := range splitList(row.get("options")) {
			question.Options = append(question.Options, OptionSpec{Text: text, Correct: correct[j]})
		}
		catalog.Lessons[idx].Questions = append(catalog.Lessons[idx].Questions, question)
	}
	return catalog, nil
}

type sheetRow struct {
	header map[string]int
	cells  []string
}

func (r sheetRow) get(column string) string {
	i, ok := r.header[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func readSheet(f *excelize.File, sheet string) ([]sheetRow, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	out := make([]sheetRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		out = append(out, sheetRow{header: header, cells: cells})
	}
	return out, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitFields splits on "|" and pads to n fields.
func splitFields(s string, n int) []string {
	parts := strings.SplitN(s, fieldSeparator, n)
	for len(parts) < n {
		parts = append(parts, "")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseLetters turns "A;C" into the set of zero-based option indexes {0, 2}.
func parseLetters(s string) (map[int]bool, error) {
	set := make(map[int]bool)
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' || r == ' ' }) {
		letter := strings.ToUpper(part)
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
			return nil, fmt.Errorf("invalid option letter %q", part)
		}
		set[int(letter[0]-'A')] = true
	}
	return set, nil
}
