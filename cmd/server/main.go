package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/studyforge/backend/internal/analysis"
	"github.com/studyforge/backend/internal/auth"
	"github.com/studyforge/backend/internal/config"
	"github.com/studyforge/backend/internal/courses"
	"github.com/studyforge/backend/internal/database"
	"github.com/studyforge/backend/internal/events"
	"github.com/studyforge/backend/internal/execute"
	"github.com/studyforge/backend/internal/generator"
	"github.com/studyforge/backend/internal/jobs"
	"github.com/studyforge/backend/internal/middleware"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Content generation client and stores
	gen := generator.NewClient(cfg)
	courseStore := courses.NewStore(db)
	userStore := auth.NewStore(db)

	// Event bus and background job runner. Handlers must be registered
	// before the bus starts accepting events.
	bus := events.NewBus(64)
	runner := jobs.NewRunner(courseStore, userStore, gen, cfg.JobStepRetries)
	runner.Register(bus)
	bus.Start(cfg.JobWorkers)
	defer bus.Stop()

	// Initialize handlers
	authHandler := auth.NewHandler(db, bus)
	courseHandler := courses.NewHandler(courseStore, gen, bus)
	executeHandler := execute.NewHandler(cfg)
	analysisHandler := analysis.NewHandler(cfg)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/sync-user", authHandler.SyncUser).Methods("POST")

	// Content generation
	api.HandleFunc("/generate-course-outline", courseHandler.CreateOutline).Methods("POST")
	api.HandleFunc("/study-type-content", courseHandler.CreateStudyContent).Methods("POST")
	api.HandleFunc("/courses", courseHandler.ListCourses).Methods("GET")
	api.HandleFunc("/courses/{courseId}", courseHandler.GetCourse).Methods("GET")
	api.HandleFunc("/courses/{courseId}/notes", courseHandler.GetChapterNotes).Methods("GET")
	api.HandleFunc("/courses/{courseId}/content", courseHandler.GetStudyContent).Methods("GET")

	// Code editor
	api.HandleFunc("/execute", executeHandler.Execute).Methods("POST")
	api.HandleFunc("/languages", executeHandler.ListLanguages).Methods("GET")
	api.HandleFunc("/analyze-code", analysisHandler.AnalyzeCode).Methods("POST")
	api.HandleFunc("/docx-export", analysisHandler.DocxExport).Methods("POST")
	api.HandleFunc("/get-gemini-key", analysisHandler.GetKey).Methods("GET")
	api.HandleFunc("/list-gemini-models", analysisHandler.ListModels).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
