package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/studyforge/backend/internal/models"
)

func TestClientWithMock_GenerateOutline(t *testing.T) {
	c := NewClientWith(NewMockClient(), "mock")

	layout, err := c.GenerateOutline(context.Background(), "Python Basics", "Exam", "Easy")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if layout.CourseTitle == "" {
		t.Error("expected a course title")
	}
	if len(layout.Chapters) == 0 {
		t.Fatal("expected chapters in mock outline")
	}
	for i, ch := range layout.Chapters {
		if len(ch.Topics) == 0 {
			t.Errorf("chapter %d has no topics", i+1)
		}
	}
}

func TestClientWithMock_GenerateChapterNotes(t *testing.T) {
	c := NewClientWith(NewMockClient(), "mock")

	notes, err := c.GenerateChapterNotes(context.Background(), models.Chapter{
		ChapterTitle: "Control Flow",
		Topics:       []string{"if-else"},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !strings.Contains(notes, "<h3>") {
		t.Errorf("expected HTML notes, got %q", notes)
	}
}

func TestClientWithMock_GenerateStudyContent(t *testing.T) {
	c := NewClientWith(NewMockClient(), "mock")

	tests := []struct {
		studyType models.StudyType
		check     func(t *testing.T, content json.RawMessage)
	}{
		{models.StudyTypeFlashcard, func(t *testing.T, content json.RawMessage) {
			var cards []struct {
				Front string `json:"front"`
				Back  string `json:"back"`
			}
			if err := json.Unmarshal(content, &cards); err != nil {
				t.Fatalf("flashcards should be an array: %v", err)
			}
			if len(cards) == 0 || cards[0].Front == "" {
				t.Errorf("unexpected flashcards: %v", cards)
			}
		}},
		{models.StudyTypeQuiz, func(t *testing.T, content json.RawMessage) {
			var quiz struct {
				QuizTitle string `json:"quizTitle"`
				Questions []struct {
					Question string   `json:"question"`
					Options  []string `json:"options"`
					Answer   string   `json:"answer"`
				} `json:"questions"`
			}
			if err := json.Unmarshal(content, &quiz); err != nil {
				t.Fatalf("quiz should be an object: %v", err)
			}
			if len(quiz.Questions) == 0 || len(quiz.Questions[0].Options) == 0 {
				t.Errorf("unexpected quiz: %+v", quiz)
			}
		}},
		{models.StudyTypeQA, func(t *testing.T, content json.RawMessage) {
			var qa []struct {
				Question string `json:"question"`
				Answer   string `json:"answer"`
			}
			if err := json.Unmarshal(content, &qa); err != nil {
				t.Fatalf("Q&A should be an array: %v", err)
			}
			if len(qa) == 0 || qa[0].Answer == "" {
				t.Errorf("unexpected Q&A: %v", qa)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.studyType), func(t *testing.T) {
			prompt, err := BuildStudyTypePrompt(tt.studyType, "Control Flow")
			if err != nil {
				t.Fatalf("build prompt: %v", err)
			}
			content, err := c.GenerateStudyContent(context.Background(), prompt)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			tt.check(t, content)
		})
	}
}

func TestGeminiClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing API key header")
		}
		if !strings.HasSuffix(r.URL.Path, "models/gemini-1.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				ResponseMimeType string `json:"responseMimeType"`
			} `json:"generationConfig"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("expected JSON mime type, got %q", req.GenerationConfig.ResponseMimeType)
		}

		fmt.Fprint(w, `{
			"candidates": [{"content": {"parts": [{"text": "{\"ok\": true}"}]}}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 5}
		}`)
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "test-key", "models/gemini-1.5-flash")

	resp, err := c.Generate(context.Background(), "ping", FormatJSON)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resp.Content != `{"ok": true}` {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.PromptTokens != 12 || resp.OutputTokens != 5 {
		t.Errorf("unexpected usage: %+v", resp)
	}
}

func TestGeminiClient_NoKey(t *testing.T) {
	c := NewGeminiClient("http://localhost:0", "", "models/gemini-1.5-flash")

	_, err := c.Generate(context.Background(), "ping", FormatText)
	if err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "test-key", "models/gemini-1.5-flash")

	_, err := c.Generate(context.Background(), "ping", FormatText)
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}
