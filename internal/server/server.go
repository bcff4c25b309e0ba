package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/pocketlifts/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker  *tracker.Tracker
	importer *tracker.Importer
	log      *slog.Logger
	router   chi.Router
	whois    WhoIser
	assets   *assetSet
}

// New creates a new Server with all routes configured.
func New(t *tracker.Tracker, imp *tracker.Importer, log *slog.Logger) *Server {
	s := &Server{
		tracker:  t,
		importer: imp,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/state", s.handleState)
		r.Put("/unit", s.handleChangeUnit)

		r.Route("/draft", func(r chi.Router) {
			r.Get("/", s.handleGetDraft)
			r.Put("/", s.handleUpdateDraft)
			r.Post("/movement", s.handleSelectMovement)
			r.Post("/nudge", s.handleNudge)
			r.Post("/sets", s.handleAddSet)
			r.Post("/wave", s.handleAddWave)
			r.Post("/commit", s.handleCommit)
			r.Post("/reset", s.handleResetDraft)
		})

		r.Get("/movements", s.handleListMovements)
		r.Post("/movements", s.handleAddMovement)
		r.Post("/movements/bulk", s.handleAddMovements)
		r.Delete("/movements/{id}", s.handleDeleteMovement)

		r.Get("/workouts", s.handleQueryWorkouts)
		r.Delete("/workouts/{id}", s.handleDeleteWorkout)

		r.Get("/history/last", s.handleLastUsed)
		r.Get("/history/suggest", s.handleSuggest)
		r.Get("/stats/e1rm", s.handleEstimate1RM)
		r.Get("/stats/summary", s.handleMovementSummary)
		r.Get("/stats/summaries", s.handleMovementSummaries)

		r.Get("/export.csv", s.handleExportCSV)

		r.Post("/import/proposal", s.handleImportProposal)
		r.Post("/import/apply", s.handleImportApply)
		r.Get("/import/logs", s.handleImportLogs)

		r.Get("/assets/manifest", s.handleAssetManifest)
	})
}

// MountMCP serves an MCP transport handler at /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// SetFrontend mounts the static frontend. Files are served with caching
// headers keyed on version, and unmatched routes serve index.html for
// client-side routing.
func (s *Server) SetFrontend(webFS fs.FS, version string) error {
	assets, err := loadAssets(webFS, version)
	if err != nil {
		return err
	}
	s.assets = assets
	fileServer := AssetCache(version)(http.FileServerFS(webFS))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
	return nil
}
