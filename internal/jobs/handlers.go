package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/studyforge/backend/internal/events"
	"github.com/studyforge/backend/internal/models"
)

// HandleGenerateNotes generates HTML notes for every chapter of a course.
// All chapter calls fan out concurrently and the step joins on all of them:
// either every chapter gets a note row and the course flips to Ready, or the
// course flips to Error and the failure is returned. Notes already inserted
// before a failure are left in place; there is no rollback.
func (r *Runner) HandleGenerateNotes(ctx context.Context, evt events.Event) error {
	var payload events.NotesGeneratePayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return fmt.Errorf("decode notes.generate payload: %w", err)
	}
	course := payload.Course

	chapters := course.CourseLayout.Chapters
	if len(chapters) == 0 {
		err := fmt.Errorf("no chapters found in course layout for course %s", course.CourseID)
		r.failCourse(ctx, course.CourseID, err)
		return err
	}

	err := r.runStep(ctx, "generate-chapter-notes", func() error {
		g, gctx := errgroup.WithContext(ctx)
		for i, chapter := range chapters {
			chapterID := i + 1
			chapter := chapter
			g.Go(func() error {
				notes, err := r.gen.GenerateChapterNotes(gctx, chapter)
				if err != nil {
					return fmt.Errorf("chapter %d: %w", chapterID, err)
				}
				if err := r.store.InsertChapterNote(gctx, course.CourseID, chapterID, notes); err != nil {
					return fmt.Errorf("insert notes for chapter %d: %w", chapterID, err)
				}
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		r.failCourse(ctx, course.CourseID, err)
		return err
	}

	err = r.runStep(ctx, "update-course-status", func() error {
		return r.store.SetCourseStatus(ctx, course.CourseID, models.StatusReady)
	})
	if err != nil {
		r.failCourse(ctx, course.CourseID, err)
		return err
	}

	log.Printf("Course %s ready: %d chapters generated", course.CourseID, len(chapters))
	return nil
}

func (r *Runner) failCourse(ctx context.Context, courseID string, cause error) {
	if err := r.store.SetCourseStatus(ctx, courseID, models.StatusError); err != nil {
		log.Printf("Failed to mark course %s as Error (cause: %v): %v", courseID, cause, err)
	}
}

// HandleStudyTypeContent generates flashcards, a quiz or Q&A for a course
// and fills in the record created by the endpoint. The record reaches a
// terminal state on every exit path: Ready with content, or Error with the
// failure message.
func (r *Runner) HandleStudyTypeContent(ctx context.Context, evt events.Event) error {
	var payload events.StudyTypeContentPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return fmt.Errorf("decode studyType.content payload: %w", err)
	}

	if !models.ValidStudyTypes[models.StudyType(payload.StudyType)] {
		err := fmt.Errorf("unsupported studyType: %s", payload.StudyType)
		r.failStudyContent(ctx, payload.RecordID, err)
		return err
	}

	var content json.RawMessage
	err := r.runStep(ctx, "generate-study-content", func() error {
		result, genErr := r.gen.GenerateStudyContent(ctx, payload.Prompt)
		if genErr != nil {
			return genErr
		}
		content = result
		return nil
	})
	if err != nil {
		r.failStudyContent(ctx, payload.RecordID, err)
		return err
	}

	err = r.runStep(ctx, "save-result", func() error {
		return r.store.CompleteStudyContent(ctx, payload.RecordID, content)
	})
	if err != nil {
		r.failStudyContent(ctx, payload.RecordID, err)
		return err
	}

	log.Printf("Study content %d (%s) ready for course %s", payload.RecordID, payload.StudyType, payload.CourseID)
	return nil
}

func (r *Runner) failStudyContent(ctx context.Context, recordID int64, cause error) {
	if err := r.store.FailStudyContent(ctx, recordID, cause.Error()); err != nil {
		log.Printf("Failed to mark study content %d as Error (cause: %v): %v", recordID, cause, err)
	}
}

// HandleUserCreate upserts a user by email. The existence check plus insert
// makes the step idempotent under the runner's retry policy.
func (r *Runner) HandleUserCreate(ctx context.Context, evt events.Event) error {
	var payload events.UserCreatePayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return fmt.Errorf("decode user.create payload: %w", err)
	}

	if payload.Email == "" {
		return fmt.Errorf("user.create payload missing email")
	}

	return r.runStep(ctx, "upsert-user", func() error {
		id, err := r.users.UpsertUserByEmail(ctx, payload.UserName, payload.Email)
		if err != nil {
			return err
		}
		log.Printf("User %s upserted (id=%d)", payload.Email, id)
		return nil
	})
}
