package models

import (
	"encoding/json"
	"time"
)

type CourseStatus string

const (
	StatusGenerating CourseStatus = "Generating"
	StatusReady      CourseStatus = "Ready"
	StatusError      CourseStatus = "Error"
)

type CourseType string

const (
	CourseTypeDSA          CourseType = "DSA"
	CourseTypeDevelopment  CourseType = "Development"
	CourseTypeFundamentals CourseType = "Core Fundamentals"
	CourseTypeOther        CourseType = "Other"
)

type DifficultyLevel string

const (
	DifficultyEasy     DifficultyLevel = "Easy"
	DifficultyModerate DifficultyLevel = "Moderate"
	DifficultyHard     DifficultyLevel = "Hard"
)

// Chapter is one titled section of a course outline.
type Chapter struct {
	ChapterTitle   string   `json:"chapterTitle"`
	ChapterSummary string   `json:"chapterSummary"`
	Emoji          string   `json:"emoji"`
	Topics         []string `json:"topics"`
}

// CourseLayout is the nested outline produced by the generation client.
type CourseLayout struct {
	CourseTitle   string    `json:"courseTitle"`
	CourseSummary string    `json:"courseSummary"`
	Chapters      []Chapter `json:"chapters"`
}

// Course is one generated study-material bundle. CourseID is a
// client-generated UUID, unique across all courses.
type Course struct {
	ID              int64           `json:"id"`
	CourseID        string          `json:"courseId"`
	Topic           string          `json:"topic"`
	CourseType      string          `json:"courseType"`
	DifficultyLevel string          `json:"difficultyLevel"`
	CreatedBy       string          `json:"createdBy"`
	CourseLayout    CourseLayout    `json:"courseLayout"`
	Status          CourseStatus    `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ChapterNote holds the generated HTML notes for one chapter,
// keyed by its 1-based position in the course layout.
type ChapterNote struct {
	ID        int64     `json:"id"`
	CourseID  string    `json:"courseId"`
	ChapterID int       `json:"chapterId"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

type StudyType string

const (
	StudyTypeNotes     StudyType = "notes"
	StudyTypeFlashcard StudyType = "Flashcard"
	StudyTypeQuiz      StudyType = "Quiz"
	StudyTypeQA        StudyType = "Question/Answer"
)

// ValidStudyTypes are the types the study-type-content endpoint accepts.
// Unknown values are rejected at the endpoint boundary with a 400.
var ValidStudyTypes = map[StudyType]bool{
	StudyTypeFlashcard: true,
	StudyTypeQuiz:      true,
	StudyTypeQA:        true,
}

// StudyTypeContent is a generated flashcard/quiz/Q&A artifact for a course.
// Content stays empty until the background job flips status to Ready.
type StudyTypeContent struct {
	ID           int64           `json:"id"`
	CourseID     string          `json:"courseId"`
	Type         StudyType       `json:"type"`
	Content      json.RawMessage `json:"content"`
	Status       CourseStatus    `json:"status"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type CreateOutlineRequest struct {
	CourseID        string `json:"courseId"`
	Topic           string `json:"topic"`
	CourseType      string `json:"courseType"`
	DifficultyLevel string `json:"difficultyLevel"`
	CreatedBy       string `json:"createdBy"`
}

type CreateOutlineResponse struct {
	Result Course `json:"result"`
}

type StudyTypeContentRequest struct {
	Chapters string `json:"chapters"`
	CourseID string `json:"courseId"`
	Type     string `json:"type"`
}
