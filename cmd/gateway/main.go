package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/hireloop/hireloop-ats/internal/api/http"
	"github.com/hireloop/hireloop-ats/internal/assessment"
	authmw "github.com/hireloop/hireloop-ats/internal/auth/middleware"
	"github.com/hireloop/hireloop-ats/internal/candidate"
	"github.com/hireloop/hireloop-ats/internal/config"
	"github.com/hireloop/hireloop-ats/internal/db"
	"github.com/hireloop/hireloop-ats/internal/job"
	"github.com/hireloop/hireloop-ats/internal/rbac"
	"github.com/hireloop/hireloop-ats/internal/storage"
	syncx "github.com/hireloop/hireloop-ats/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	jobs := job.NewSQLStore(dbh)
	candidates := candidate.NewSQLStore(dbh)
	assessments := assessment.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := authmw.NewAuthService(cfg.AuthSecret)
	hub := api.NewSessionHub()
	sessCfg := api.SessionConfig{
		ValidateOnBlur: cfg.ValidateOnBlur,
		GateSections:   cfg.GateSections,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsDev
	if cfg.Mode == config.ModeProd {
		origins = cfg.CORSOriginsProd
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", authmw.LoginHandler(authSvc, dbh, authmw.LoginCreds{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	}))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		// Jobs board
		pr.With(rbac.Require("job:create")).Post("/jobs", api.CreateJobHandler(jobs))
		pr.With(rbac.Require("job:view")).Get("/jobs", api.ListJobsHandler(jobs))
		pr.With(rbac.Require("job:view")).Get("/jobs/{jobID}", api.GetJobHandler(jobs))
		pr.With(rbac.Require("job:update")).Put("/jobs/{jobID}", api.UpdateJobHandler(jobs))
		pr.With(rbac.Require("job:update")).Post("/jobs/{jobID}/status", api.ArchiveJobHandler(jobs))
		pr.With(rbac.Require("job:delete")).Delete("/jobs/{jobID}", api.DeleteJobHandler(jobs))

		// Candidate pipeline
		pr.With(rbac.Require("candidate:create")).Post("/candidates", api.CreateCandidateHandler(candidates))
		pr.With(rbac.Require("candidate:view")).Get("/candidates", api.ListCandidatesHandler(candidates))
		pr.With(rbac.Require("candidate:view")).Get("/candidates/{candidateID}", api.GetCandidateHandler(candidates))
		pr.With(rbac.Require("candidate:update")).Post("/candidates/{candidateID}/stage", api.MoveStageHandler(candidates, events))
		pr.With(rbac.Require("candidate:view")).Get("/candidates/{candidateID}/timeline", api.CandidateTimelineHandler(events))
		pr.With(rbac.Require("candidate:delete")).Delete("/candidates/{candidateID}", api.DeleteCandidateHandler(candidates))

		// Assessment builder
		pr.With(rbac.Require("assessment:create")).Post("/assessments", api.UpsertAssessmentHandler(assessments))
		pr.With(rbac.Require("assessment:update")).Put("/assessments/{assessmentID}", api.UpsertAssessmentHandler(assessments))
		pr.With(rbac.Require("assessment:view")).Get("/assessments", api.ListAssessmentsHandler(assessments))
		pr.With(rbac.Require("assessment:view")).Get("/assessments/{assessmentID}", api.GetAssessmentHandler(assessments))
		pr.With(rbac.Require("assessment:delete")).Delete("/assessments/{assessmentID}", api.DeleteAssessmentHandler(assessments))
		pr.With(rbac.Require("assessment:view")).Post("/assessments/{assessmentID}/preview", api.PreviewConditionsHandler(assessments))

		// Taking-sessions
		pr.With(rbac.Require("session:take")).Post("/sessions", api.CreateSessionHandler(hub, assessments, events, sessCfg))
		pr.With(rbac.Require("session:take")).Get("/sessions/{sessionID}", api.GetSessionHandler(hub))
		pr.With(rbac.Require("session:take")).Patch("/sessions/{sessionID}/answers", api.AnswerHandler(hub))
		pr.With(rbac.Require("session:take")).Post("/sessions/{sessionID}/blur", api.BlurHandler(hub))
		pr.With(rbac.Require("session:take")).Post("/sessions/{sessionID}/section", api.GotoSectionHandler(hub))
		pr.With(rbac.Require("session:take")).Post("/sessions/{sessionID}/save", api.SaveSessionHandler(hub))
		pr.With(rbac.Require("session:take")).Post("/sessions/{sessionID}/submit", api.SubmitSessionHandler(hub))
		pr.With(rbac.Require("session:take")).Get("/sessions/{sessionID}/events", api.SessionEventsHandler(hub, origins))

		// Stored responses (recruiter dashboards)
		pr.With(rbac.RequireAny("response:view-own", "response:view-all")).Get("/responses/{responseID}", api.GetResponseHandler(assessments))
		pr.With(rbac.Require("response:view-all")).Get("/responses", api.ListResponsesHandler(assessments))
		pr.With(rbac.Require("response:review")).Post("/responses/{responseID}/review", api.ReviewResponseHandler(assessments))
		pr.With(rbac.Require("response:export")).Get("/responses/{responseID}/export", api.ExportResponseHandler(assessments, candidates))

		// Blobs
		pr.Route("/uploads", func(ur chi.Router) {
			ur.Use(rbac.Require("upload:answer"))
			api.MountUploads(ur, bs, cfg.MaxUploadSizeMB)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
