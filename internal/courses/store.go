package courses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/studyforge/backend/internal/models"
)

// ErrDuplicateCourse is returned when a courseId already exists. Course IDs
// are client-generated UUIDs; the store enforces uniqueness as a backstop.
var ErrDuplicateCourse = errors.New("course already exists")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Courses ─────────────────────────────────────────────

func (s *Store) CreateCourse(ctx context.Context, req models.CreateOutlineRequest, layout models.CourseLayout) (*models.Course, error) {
	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("marshal course layout: %w", err)
	}

	var course models.Course
	var rawLayout []byte
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO courses (course_id, topic, course_type, difficulty_level, created_by, course_layout)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, course_id, topic, course_type, difficulty_level, created_by, course_layout, status, created_at`,
		req.CourseID, req.Topic, req.CourseType, req.DifficultyLevel, req.CreatedBy, layoutJSON,
	).Scan(&course.ID, &course.CourseID, &course.Topic, &course.CourseType,
		&course.DifficultyLevel, &course.CreatedBy, &rawLayout, &course.Status, &course.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrDuplicateCourse
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	if err := json.Unmarshal(rawLayout, &course.CourseLayout); err != nil {
		return nil, fmt.Errorf("decode stored layout: %w", err)
	}

	return &course, nil
}

func (s *Store) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	var rawLayout []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, topic, course_type, difficulty_level, created_by, course_layout, status, created_at
		 FROM courses WHERE course_id = $1`,
		courseID,
	).Scan(&course.ID, &course.CourseID, &course.Topic, &course.CourseType,
		&course.DifficultyLevel, &course.CreatedBy, &rawLayout, &course.Status, &course.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get course %s: %w", courseID, err)
	}

	if err := json.Unmarshal(rawLayout, &course.CourseLayout); err != nil {
		return nil, fmt.Errorf("decode stored layout: %w", err)
	}

	return &course, nil
}

func (s *Store) ListCoursesByCreator(ctx context.Context, createdBy string) ([]models.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, topic, course_type, difficulty_level, created_by, course_layout, status, created_at
		 FROM courses WHERE created_by = $1 ORDER BY created_at DESC`,
		createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		var rawLayout []byte
		if err := rows.Scan(&course.ID, &course.CourseID, &course.Topic, &course.CourseType,
			&course.DifficultyLevel, &course.CreatedBy, &rawLayout, &course.Status, &course.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		if err := json.Unmarshal(rawLayout, &course.CourseLayout); err != nil {
			return nil, fmt.Errorf("decode stored layout: %w", err)
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (s *Store) SetCourseStatus(ctx context.Context, courseID string, status models.CourseStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE courses SET status = $1 WHERE course_id = $2`,
		status, courseID,
	)
	return err
}

// ── Chapter notes ───────────────────────────────────────

// InsertChapterNote is idempotent per (courseID, chapterID) so a retried
// generation step can safely re-write the same chapter.
func (s *Store) InsertChapterNote(ctx context.Context, courseID string, chapterID int, notes string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapter_notes (course_id, chapter_id, notes)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (course_id, chapter_id) DO UPDATE SET notes = EXCLUDED.notes`,
		courseID, chapterID, notes,
	)
	return err
}

func (s *Store) ListChapterNotes(ctx context.Context, courseID string) ([]models.ChapterNote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, chapter_id, notes, created_at
		 FROM chapter_notes WHERE course_id = $1 ORDER BY chapter_id`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chapter notes: %w", err)
	}
	defer rows.Close()

	var notes []models.ChapterNote
	for rows.Next() {
		var n models.ChapterNote
		if err := rows.Scan(&n.ID, &n.CourseID, &n.ChapterID, &n.Notes, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chapter note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ── Study-type content ──────────────────────────────────

func (s *Store) CreateStudyContent(ctx context.Context, courseID string, studyType models.StudyType) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO study_type_content (course_id, type) VALUES ($1, $2) RETURNING id`,
		courseID, studyType,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create study content: %w", err)
	}
	return id, nil
}

func (s *Store) CompleteStudyContent(ctx context.Context, recordID int64, content json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE study_type_content SET content = $1, status = $2, error_message = NULL WHERE id = $3`,
		[]byte(content), models.StatusReady, recordID,
	)
	return err
}

func (s *Store) FailStudyContent(ctx context.Context, recordID int64, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE study_type_content SET status = $1, error_message = $2 WHERE id = $3`,
		models.StatusError, message, recordID,
	)
	return err
}

func (s *Store) ListStudyContent(ctx context.Context, courseID string, studyType string) ([]models.StudyTypeContent, error) {
	query := `SELECT id, course_id, type, COALESCE(content, 'null'::jsonb), status, COALESCE(error_message, ''), created_at
	          FROM study_type_content WHERE course_id = $1`
	args := []any{courseID}
	if studyType != "" {
		query += ` AND type = $2`
		args = append(args, studyType)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list study content: %w", err)
	}
	defer rows.Close()

	var contents []models.StudyTypeContent
	for rows.Next() {
		var c models.StudyTypeContent
		var raw []byte
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Type, &raw, &c.Status, &c.ErrorMessage, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan study content: %w", err)
		}
		c.Content = json.RawMessage(raw)
		contents = append(contents, c)
	}
	return contents, rows.Err()
}
