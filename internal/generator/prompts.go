package generator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/studyforge/backend/internal/models"
)

// Prompt builders are pure functions: (parameters) -> prompt string.
// Each generation call carries its complete instruction, there is no
// persistent chat history between calls.

func BuildOutlinePrompt(topic, courseType, difficulty string) string {
	return fmt.Sprintf(
		"Generate a study material for '%s' for '%s' and level of difficulty will be '%s'. "+
			"Respond with a single JSON object with keys courseTitle (string), courseSummary (string) "+
			"and chapters (array). Each chapter must have chapterTitle, chapterSummary, an emoji icon "+
			"and a topics array of strings.",
		topic, courseType, difficulty,
	)
}

func BuildChapterNotesPrompt(chapter models.Chapter) (string, error) {
	serialized, err := json.Marshal(chapter)
	if err != nil {
		return "", fmt.Errorf("marshal chapter: %w", err)
	}

	return "Generate exam material detail content for the following chapter. " +
		"Make sure to include all topic points in the content and give a detailed explanation for each. " +
		"Give the content in HTML format (do not add html, head, body or title tags), " +
		"using <h3> for the chapter title, <h4> for each topic and <p> for content. " +
		"The chapter: " + string(serialized), nil
}

func BuildFlashcardPrompt(chapters string) string {
	return "Generate the flashcard on topic: " + chapters +
		" in JSON format with front and back content, maximum 15. " +
		"Respond with a JSON array of objects, each with front and back keys."
}

func BuildQuizPrompt(chapters string) string {
	return "Generate Quiz on topic: " + chapters +
		" with questions and options along with the answer in JSON format, maximum 10. " +
		"Respond with a JSON object with keys quizTitle and questions; each question object " +
		"has question, options (array) and answer keys."
}

func BuildQAPrompt(chapters string) string {
	return "Generate a detailed Q&A on topic: " + chapters +
		" in JSON format with each question and a detailed answer, maximum 10. " +
		"Respond with a JSON array of objects, each with question and answer keys."
}

// BuildStudyTypePrompt dispatches to the template for a study type.
// Callers validate the type at the endpoint boundary; an unknown type
// here is a programming error and is reported as such.
func BuildStudyTypePrompt(studyType models.StudyType, chapters string) (string, error) {
	switch studyType {
	case models.StudyTypeFlashcard:
		return BuildFlashcardPrompt(chapters), nil
	case models.StudyTypeQuiz:
		return BuildQuizPrompt(chapters), nil
	case models.StudyTypeQA:
		return BuildQAPrompt(chapters), nil
	default:
		return "", fmt.Errorf("unsupported study type: %s", studyType)
	}
}

// BuildAnalysisPrompt builds the code-review instruction for the analysis
// endpoint, embedding the client-observed typing telemetry as context.
func BuildAnalysisPrompt(req models.AnalyzeRequest) string {
	var b strings.Builder

	b.WriteString("You are a code analysis expert specializing in detecting AI-written code and evaluating coding approaches.\n")
	fmt.Fprintf(&b, "Analyze the following %s code and provide a detailed report.\n\n", req.Language)

	b.WriteString("CONTEXT:\n")
	if req.SessionDuration > 0 {
		fmt.Fprintf(&b, "- Session duration: %d seconds\n", req.SessionDuration)
	} else {
		b.WriteString("- Session duration: Unknown\n")
	}
	if req.AverageTypingInterval > 0 {
		fmt.Fprintf(&b, "- Average typing interval: %d ms\n", int(math.Round(req.AverageTypingInterval)))
	} else {
		b.WriteString("- Average typing interval: Unknown\n")
	}
	fmt.Fprintf(&b, "- Number of typing pattern samples: %d\n", req.TypingPatterns)
	if len(req.CodeSnapshots) > 0 {
		fmt.Fprintf(&b, "- Code evolution: %d snapshots recorded\n", len(req.CodeSnapshots))
	}

	b.WriteString(`
ANALYSIS REQUIREMENTS:
1. Approach Analysis: Evaluate the overall approach and design of the code.
2. Logic Analysis: Analyze the logic, algorithms and problem-solving techniques used. Identify any logical errors or inefficiencies.
3. AI Detection: Determine if this code appears to be written by AI or a human, with detailed reasoning. Consider typing patterns, code evolution, stylistic markers, comment style and variable naming.
4. Improvement Suggestions: Provide specific suggestions to improve the code.
5. Overall Score: Rate the code quality from 1-10.

Format your response as a JSON object with the following keys:
- approach (string)
- logic (string)
- aiDetection (string)
- suggestions (string)
- overallScore (number)

Here is the code to analyze:

`)
	fmt.Fprintf(&b, "```%s\n%s\n```\n", req.Language, req.Code)

	return b.String()
}
