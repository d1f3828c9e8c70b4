package courses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/studyforge/backend/internal/events"
	"github.com/studyforge/backend/internal/generator"
	"github.com/studyforge/backend/internal/models"
)

// OutlineGenerator is the slice of the generation client the outline
// endpoint calls synchronously.
type OutlineGenerator interface {
	GenerateOutline(ctx context.Context, topic, courseType, difficulty string) (*models.CourseLayout, error)
}

// CourseStore is what the handlers need from the persistence layer.
type CourseStore interface {
	CreateCourse(ctx context.Context, req models.CreateOutlineRequest, layout models.CourseLayout) (*models.Course, error)
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	ListCoursesByCreator(ctx context.Context, createdBy string) ([]models.Course, error)
	ListChapterNotes(ctx context.Context, courseID string) ([]models.ChapterNote, error)
	CreateStudyContent(ctx context.Context, courseID string, studyType models.StudyType) (int64, error)
	ListStudyContent(ctx context.Context, courseID string, studyType string) ([]models.StudyTypeContent, error)
}

// Publisher dispatches events to the background job runner. Publish blocks
// until the event is accepted, so the endpoints can confirm dispatch.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any) (string, error)
}

type Handler struct {
	store CourseStore
	gen   OutlineGenerator
	bus   Publisher
}

func NewHandler(store CourseStore, gen OutlineGenerator, bus Publisher) *Handler {
	return &Handler{store: store, gen: gen, bus: bus}
}

// CreateOutline handles POST /generate-course-outline. It generates the
// course layout synchronously, persists the course with status Generating
// and dispatches the notes.generate event before responding.
func (h *Handler) CreateOutline(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.CourseID == "" || req.Topic == "" || req.CourseType == "" ||
		req.DifficultyLevel == "" || req.CreatedBy == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Missing required fields"})
		return
	}

	if _, err := uuid.Parse(req.CourseID); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "courseId must be a valid UUID"})
		return
	}

	layout, err := h.gen.GenerateOutline(r.Context(), req.Topic, req.CourseType, req.DifficultyLevel)
	if err != nil {
		log.Printf("Outline generation failed for course %s: %v", req.CourseID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error", Details: err.Error()})
		return
	}

	course, err := h.store.CreateCourse(r.Context(), req, *layout)
	if err != nil {
		if errors.Is(err, ErrDuplicateCourse) {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "A course with this courseId already exists"})
			return
		}
		log.Printf("Course insert failed for %s: %v", req.CourseID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error", Details: err.Error()})
		return
	}

	eventID, err := h.bus.Publish(r.Context(), events.EventNotesGenerate, events.NotesGeneratePayload{Course: *course})
	if err != nil {
		log.Printf("Event dispatch failed for course %s: %v", req.CourseID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error", Details: err.Error()})
		return
	}
	log.Printf("Course %s created, notes.generate dispatched (%s)", course.CourseID, eventID)

	writeJSON(w, http.StatusOK, models.CreateOutlineResponse{Result: *course})
}

// CreateStudyContent handles POST /study-type-content. The type is a closed
// enum validated before any store write; the generated prompt travels with
// the event so the job does not rebuild it.
func (h *Handler) CreateStudyContent(w http.ResponseWriter, r *http.Request) {
	var req models.StudyTypeContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Chapters == "" || req.CourseID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "chapters and courseId are required"})
		return
	}

	studyType := models.StudyType(req.Type)
	if !models.ValidStudyTypes[studyType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "type must be 'Flashcard', 'Quiz' or 'Question/Answer'"})
		return
	}

	prompt, err := generator.BuildStudyTypePrompt(studyType, req.Chapters)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	recordID, err := h.store.CreateStudyContent(r.Context(), req.CourseID, studyType)
	if err != nil {
		log.Printf("Study content insert failed for course %s: %v", req.CourseID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error", Details: err.Error()})
		return
	}

	eventID, err := h.bus.Publish(r.Context(), events.EventStudyTypeContent, events.StudyTypeContentPayload{
		StudyType: req.Type,
		Prompt:    prompt,
		CourseID:  req.CourseID,
		RecordID:  recordID,
	})
	if err != nil {
		log.Printf("Event dispatch failed for study content %d: %v", recordID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error", Details: err.Error()})
		return
	}
	log.Printf("Study content %d created, studyType.content dispatched (%s)", recordID, eventID)

	writeJSON(w, http.StatusOK, recordID)
}

// GetCourse handles GET /courses/{courseId}; views poll this for status.
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["courseId"]

	course, err := h.store.GetCourse(r.Context(), courseID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Course not found"})
		return
	}

	writeJSON(w, http.StatusOK, course)
}

// ListCourses handles GET /courses?createdBy=...
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	createdBy := r.URL.Query().Get("createdBy")
	if createdBy == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "createdBy query parameter is required"})
		return
	}

	courses, err := h.store.ListCoursesByCreator(r.Context(), createdBy)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list courses"})
		return
	}

	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

// GetChapterNotes handles GET /courses/{courseId}/notes.
func (h *Handler) GetChapterNotes(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["courseId"]

	notes, err := h.store.ListChapterNotes(r.Context(), courseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch notes"})
		return
	}

	if notes == nil {
		notes = []models.ChapterNote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// GetStudyContent handles GET /courses/{courseId}/content?type=...
func (h *Handler) GetStudyContent(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["courseId"]
	studyType := r.URL.Query().Get("type")

	contents, err := h.store.ListStudyContent(r.Context(), courseID, studyType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch study content"})
		return
	}

	if contents == nil {
		contents = []models.StudyTypeContent{}
	}
	writeJSON(w, http.StatusOK, contents)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
