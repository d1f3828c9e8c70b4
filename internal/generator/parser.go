package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studyforge/backend/internal/models"
)

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseOutline parses a model response into a course layout and enforces
// the strict outline shape the outline endpoint promises its callers.
func ParseOutline(responseBody string) (*models.CourseLayout, error) {
	cleaned := StripCodeFences(responseBody)

	var layout models.CourseLayout
	if err := json.Unmarshal([]byte(cleaned), &layout); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateOutline(&layout); err != nil {
		return nil, err
	}

	return &layout, nil
}

func validateOutline(layout *models.CourseLayout) error {
	var errs []string

	if layout.CourseTitle == "" {
		errs = append(errs, "empty courseTitle")
	}
	if layout.CourseSummary == "" {
		errs = append(errs, "empty courseSummary")
	}
	if len(layout.Chapters) == 0 {
		errs = append(errs, "no chapters in layout")
	}

	for i, ch := range layout.Chapters {
		num := i + 1
		if ch.ChapterTitle == "" {
			errs = append(errs, fmt.Sprintf("chapter %d: empty chapterTitle", num))
		}
		if ch.ChapterSummary == "" {
			errs = append(errs, fmt.Sprintf("chapter %d: empty chapterSummary", num))
		}
		if len(ch.Topics) == 0 {
			errs = append(errs, fmt.Sprintf("chapter %d: no topics", num))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// ParseStudyContent checks that a flashcard/quiz/Q&A response is valid JSON
// and returns it compacted. Per-type shape is owned by the consumer.
func ParseStudyContent(responseBody string) (json.RawMessage, error) {
	cleaned := StripCodeFences(responseBody)

	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(cleaned)); err != nil {
		return nil, fmt.Errorf("compact study content: %w", err)
	}

	return json.RawMessage(buf.Bytes()), nil
}

// StripCodeFences removes a surrounding markdown code fence if present.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```html") {
		s = strings.TrimPrefix(s, "```html")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// ExtractJSONObject pulls a JSON object out of a model response that may
// wrap it in markdown fences or surrounding prose. Used by the analysis
// endpoint, which tolerates sloppier output than the generation paths.
func ExtractJSONObject(s string) (string, error) {
	cleaned := StripCodeFences(s)

	if json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}

	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("extracted text is not valid JSON")
	}

	return candidate, nil
}
