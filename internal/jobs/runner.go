package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/studyforge/backend/internal/events"
	"github.com/studyforge/backend/internal/models"
)

// ContentGenerator is the slice of the generation client the jobs need.
type ContentGenerator interface {
	GenerateChapterNotes(ctx context.Context, chapter models.Chapter) (string, error)
	GenerateStudyContent(ctx context.Context, prompt string) (json.RawMessage, error)
}

// CourseStore is the slice of the course store the jobs write through.
type CourseStore interface {
	InsertChapterNote(ctx context.Context, courseID string, chapterID int, notes string) error
	SetCourseStatus(ctx context.Context, courseID string, status models.CourseStatus) error
	CompleteStudyContent(ctx context.Context, recordID int64, content json.RawMessage) error
	FailStudyContent(ctx context.Context, recordID int64, message string) error
}

// UserStore handles the user.create upsert.
type UserStore interface {
	UpsertUserByEmail(ctx context.Context, name, email string) (int64, error)
}

// Runner executes the background jobs dispatched through the event bus.
// Every job transitions its owned record to a terminal state (Ready or
// Error) on every exit path, including step failures.
type Runner struct {
	store       CourseStore
	users       UserStore
	gen         ContentGenerator
	stepRetries int
	stepBackoff time.Duration
}

func NewRunner(store CourseStore, users UserStore, gen ContentGenerator, stepRetries int) *Runner {
	if stepRetries < 0 {
		stepRetries = 0
	}
	return &Runner{
		store:       store,
		users:       users,
		gen:         gen,
		stepRetries: stepRetries,
		stepBackoff: time.Second,
	}
}

// Register subscribes all job handlers on the bus.
func (r *Runner) Register(bus *events.Bus) {
	bus.Subscribe(events.EventUserCreate, r.HandleUserCreate)
	bus.Subscribe(events.EventNotesGenerate, r.HandleGenerateNotes)
	bus.Subscribe(events.EventStudyTypeContent, r.HandleStudyTypeContent)
}

// runStep executes one named job step, retrying with exponential backoff.
// Each step is idempotent so a retry after a partial failure is safe.
func (r *Runner) runStep(ctx context.Context, name string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.stepRetries; attempt++ {
		if attempt > 0 {
			backoff := r.stepBackoff * time.Duration(1<<uint(attempt-1))
			log.Printf("Job step %q retrying in %v (attempt %d)", name, backoff, attempt+1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			log.Printf("Job step %q attempt %d failed: %v", name, attempt+1, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("step %q failed after %d attempts: %w", name, r.stepRetries+1, lastErr)
}
