package generator

import (
	"strings"
	"testing"
)

const validOutlineJSON = `{
  "courseTitle": "Go Basics",
  "courseSummary": "An introduction to the Go programming language.",
  "chapters": [
    {
      "chapterTitle": "Getting Started",
      "chapterSummary": "Installing Go and writing a first program.",
      "emoji": "🚀",
      "topics": ["Installation", "Hello World"]
    },
    {
      "chapterTitle": "Types",
      "chapterSummary": "Basic types and type conversions.",
      "emoji": "🔢",
      "topics": ["Integers", "Strings", "Structs"]
    }
  ]
}`

func TestParseOutline_Valid(t *testing.T) {
	layout, err := ParseOutline(validOutlineJSON)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if layout.CourseTitle != "Go Basics" {
		t.Errorf("expected courseTitle 'Go Basics', got %q", layout.CourseTitle)
	}
	if len(layout.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(layout.Chapters))
	}
	if len(layout.Chapters[1].Topics) != 3 {
		t.Errorf("expected 3 topics in chapter 2, got %d", len(layout.Chapters[1].Topics))
	}
}

func TestParseOutline_MarkdownFences(t *testing.T) {
	input := "```json\n" + validOutlineJSON + "\n```"

	layout, err := ParseOutline(input)
	if err != nil {
		t.Fatalf("expected no error with markdown fences, got: %v", err)
	}
	if len(layout.Chapters) != 2 {
		t.Errorf("expected 2 chapters, got %d", len(layout.Chapters))
	}
}

func TestParseOutline_MissingChapters(t *testing.T) {
	input := `{"courseTitle": "Go Basics", "courseSummary": "Summary.", "chapters": []}`

	_, err := ParseOutline(input)
	if err == nil {
		t.Fatal("expected validation error for empty chapters")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got: %T", err)
	}

	found := false
	for _, e := range ve.Errors {
		if strings.Contains(e, "no chapters") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected error about missing chapters, got: %v", ve.Errors)
	}
}

func TestParseOutline_ChapterMissingTopics(t *testing.T) {
	input := `{
	  "courseTitle": "Go Basics",
	  "courseSummary": "Summary.",
	  "chapters": [
	    {"chapterTitle": "Getting Started", "chapterSummary": "Setup.", "emoji": "🚀", "topics": []}
	  ]
	}`

	_, err := ParseOutline(input)
	if err == nil {
		t.Fatal("expected validation error for chapter without topics")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got: %T", err)
	}

	found := false
	for _, e := range ve.Errors {
		if strings.Contains(e, "chapter 1") && strings.Contains(e, "no topics") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected error about chapter 1 topics, got: %v", ve.Errors)
	}
}

func TestParseOutline_AggregatesErrors(t *testing.T) {
	input := `{"courseTitle": "", "courseSummary": "", "chapters": []}`

	_, err := ParseOutline(input)
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got: %T", err)
	}
	if len(ve.Errors) != 3 {
		t.Errorf("expected 3 aggregated errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
}

func TestParseOutline_MalformedJSON(t *testing.T) {
	_, err := ParseOutline("this is not json at all")
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}

	// Should NOT be a ValidationError — should be a parse error
	if _, ok := err.(*ValidationError); ok {
		t.Fatal("expected parse error, not ValidationError")
	}
}

func TestParseStudyContent_ValidArray(t *testing.T) {
	input := "```json\n[{\"front\": \"Q\", \"back\": \"A\"}]\n```"

	content, err := ParseStudyContent(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(content) != `[{"front":"Q","back":"A"}]` {
		t.Errorf("expected compacted JSON, got %s", content)
	}
}

func TestParseStudyContent_Invalid(t *testing.T) {
	_, err := ParseStudyContent("not json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"html fence", "```html\n<h3>Title</h3>\n```", "<h3>Title</h3>"},
		{"bare fence", "```\nplain\n```", "plain"},
		{"no fence", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripCodeFences(tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObject_CleanJSON(t *testing.T) {
	got, err := ExtractJSONObject(`{"approach": "fine"}`)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got != `{"approach": "fine"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_SurroundingProse(t *testing.T) {
	input := "Here is my analysis:\n{\"approach\": \"fine\", \"overallScore\": 8}\nLet me know if you need more."

	got, err := ExtractJSONObject(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got != `{"approach": "fine", "overallScore": 8}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	_, err := ExtractJSONObject("there is no structured data here")
	if err == nil {
		t.Fatal("expected error when no JSON object present")
	}
}
