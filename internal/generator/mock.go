package generator

import (
	"context"
	"strings"
)

// MockClient returns deterministic fixtures for local development and tests.
// The fixture is picked by inspecting the prompt, since prompts are the only
// state a generation call carries.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, prompt string, format Format) (*LLMResponse, error) {
	lower := strings.ToLower(prompt)

	var content string
	switch {
	case strings.Contains(lower, "flashcard"):
		content = mockFlashcards
	case strings.Contains(lower, "quiz"):
		content = mockQuiz
	case strings.Contains(lower, "q&a"):
		content = mockQA
	case strings.Contains(lower, "exam material"):
		content = mockChapterNotes
	case strings.Contains(lower, "code analysis expert"):
		content = mockAnalysis
	default:
		content = mockOutline
	}

	return &LLMResponse{
		Content:      content,
		PromptTokens: 500,
		OutputTokens: 1200,
	}, nil
}

const mockOutline = `{
  "courseTitle": "[Mock] Python Basics",
  "courseSummary": "[Mock] An easy introduction to Python programming covering fundamental concepts and syntax.",
  "chapters": [
    {
      "chapterTitle": "Introduction to Python",
      "chapterSummary": "History, applications and environment setup.",
      "emoji": "🐍",
      "topics": ["What is Python?", "Setting up the environment", "First program"]
    },
    {
      "chapterTitle": "Variables and Data Types",
      "chapterSummary": "Fundamental data types and how to work with variables.",
      "emoji": "📦",
      "topics": ["Variables", "Integers", "Strings", "Booleans"]
    },
    {
      "chapterTitle": "Control Flow",
      "chapterSummary": "Conditional statements and loops.",
      "emoji": "🔀",
      "topics": ["if-else", "for loop", "while loop"]
    }
  ]
}`

const mockChapterNotes = `<h3>[Mock] Chapter Notes</h3>
<p>This chapter covers the listed topics in detail.</p>
<h4>Topic One</h4>
<p>A detailed explanation of the first topic with examples and key points to remember for the exam.</p>
<h4>Topic Two</h4>
<p>A detailed explanation of the second topic, including common pitfalls.</p>`

const mockFlashcards = `[
  {"front": "[Mock] What is a variable?", "back": "A named reference to a value stored in memory."},
  {"front": "[Mock] What does a for loop do?", "back": "Repeats a block of code once per element of a sequence."},
  {"front": "[Mock] What is a function?", "back": "A reusable block of code that takes inputs and returns a value."}
]`

const mockQuiz = `{
  "quizTitle": "[Mock] Fundamentals Quiz",
  "questions": [
    {
      "question": "Which keyword defines a function in Python?",
      "options": ["func", "def", "fn", "lambda"],
      "answer": "def"
    },
    {
      "question": "Which data structure stores key-value pairs?",
      "options": ["List", "Tuple", "Dictionary", "Set"],
      "answer": "Dictionary"
    }
  ]
}`

const mockQA = `[
  {
    "question": "[Mock] What is the difference between a list and a tuple?",
    "answer": "Lists are mutable ordered sequences; tuples are immutable ordered sequences. Use tuples for fixed collections."
  },
  {
    "question": "[Mock] What is scope?",
    "answer": "Scope determines where a name is visible. Python resolves names through the local, enclosing, global and builtin scopes."
  }
]`

const mockAnalysis = `{
  "approach": "[Mock] The approach is straightforward and appropriate for the problem size.",
  "logic": "[Mock] The logic is sound with no obvious errors.",
  "aiDetection": "[Mock] Typing telemetry is consistent with human authorship.",
  "suggestions": "[Mock] Add input validation and split long functions.",
  "overallScore": 7
}`
