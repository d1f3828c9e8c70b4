package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyforge/backend/internal/models"
)

// Event names shared between the HTTP endpoints and the job runner.
const (
	EventUserCreate       = "user.create"
	EventNotesGenerate    = "notes.generate"
	EventStudyTypeContent = "studyType.content"
)

// Event is one named message flowing from an endpoint to the job runner.
type Event struct {
	ID         string
	Name       string
	Data       json.RawMessage
	EnqueuedAt time.Time
}

// NotesGeneratePayload carries the full persisted course row.
type NotesGeneratePayload struct {
	Course models.Course `json:"course"`
}

// StudyTypeContentPayload carries everything the study-type job needs.
type StudyTypeContentPayload struct {
	StudyType string `json:"studyType"`
	Prompt    string `json:"prompt"`
	CourseID  string `json:"courseId"`
	RecordID  int64  `json:"recordId"`
}

// UserCreatePayload carries the fields for the user upsert job.
type UserCreatePayload struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

type HandlerFunc func(ctx context.Context, evt Event) error

// Bus is the in-process pub/sub between HTTP endpoints and the job runner.
// Publish is awaited: it returns only once the event is accepted onto the
// queue, and errors when no handler is registered for the name, so callers
// get a dispatch-confirmed result rather than fire-and-forget.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	queue    chan Event
	wg       sync.WaitGroup
	started  bool
}

func NewBus(queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
		queue:    make(chan Event, queueSize),
	}
}

// Subscribe registers a handler for a named event. Must be called before Start.
func (b *Bus) Subscribe(name string, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], fn)
}

// Publish marshals the payload and enqueues one event. It blocks until the
// queue accepts the event or the context is canceled.
func (b *Bus) Publish(ctx context.Context, name string, payload any) (string, error) {
	b.mu.RLock()
	registered := len(b.handlers[name]) > 0
	b.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("no handler registered for event %q", name)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event payload: %w", err)
	}

	evt := Event{
		ID:         uuid.New().String(),
		Name:       name,
		Data:       data,
		EnqueuedAt: time.Now(),
	}

	select {
	case b.queue <- evt:
		return evt.ID, nil
	case <-ctx.Done():
		return "", fmt.Errorf("event %q not dispatched: %w", name, ctx.Err())
	}
}

// Start launches the worker pool. One job invocation runs per received event.
func (b *Bus) Start(workers int) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	if workers <= 0 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
}

// Stop closes the queue and waits for in-flight handlers to finish.
func (b *Bus) Stop() {
	close(b.queue)
	b.wg.Wait()
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for evt := range b.queue {
		b.mu.RLock()
		handlers := b.handlers[evt.Name]
		b.mu.RUnlock()

		for _, fn := range handlers {
			if err := fn(context.Background(), evt); err != nil {
				// Handler-internal steps carry their own retry; a failure
				// surfacing here is terminal for this invocation.
				log.Printf("Event %s (%s) handler failed: %v", evt.Name, evt.ID, err)
			}
		}
	}
}
