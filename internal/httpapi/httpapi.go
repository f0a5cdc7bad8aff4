// Package httpapi exposes a thin HTTP surface for job submission,
// result retrieval, and agent turns, grounded in the teacher's
// arx-backend router plus its gateway middleware stack (CORS, rate
// limiting) re-assembled on chi instead of the teacher's own router
// wiring — chi is the teacher's own go.mod dependency, used here the
// way arx-backend/main.go wires its primary router.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"luxera/internal/agent"
	"luxera/internal/cache"
	"luxera/internal/project"
	"luxera/internal/runner"
	"luxera/internal/store/pgstore"
)

// Config configures the HTTP surface.
type Config struct {
	Addr           string
	ProjectRoot    string
	ResultsRoot    string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	// Store and Cache are optional: nil leaves the job-run path on
	// filesystem content-addressed caching alone (internal/runner's own
	// CacheHit check), the way a single-instance deployment runs today.
	// A deployment that sets LUXERA_DATABASE_URL / LUXERA_REDIS_ADDR
	// passes both through so multi-instance result lookup and the
	// project/audit side index are exercised.
	Store *pgstore.Store
	Cache *cache.Cache
}

// Server wires the chi router, CORS, rate limiting, and the Luxera
// operation handlers together.
type Server struct {
	cfg      Config
	logger   *zap.Logger
	rt       *agent.Runtime
	router   chi.Router
	progress *progressBroker
	validate *validator.Validate
	store    *pgstore.Store
	cache    *cache.Cache
}

// New constructs a Server and builds its route table.
func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		rt:       agent.New(cfg.ResultsRoot),
		progress: newProgressBroker(),
		validate: validator.New(),
		store:    cfg.Store,
		cache:    cfg.Cache,
	}
	s.router = s.buildRouter()
	return s
}

// progressEvent is one job-runner progress notification: started when
// a run begins, completed (with the resulting job hash) when it ends.
type progressEvent struct {
	ProjectName string `json:"project_name"`
	JobID       string `json:"job_id"`
	Stage       string `json:"stage"`
	JobHash     string `json:"job_hash,omitempty"`
	Error       string `json:"error,omitempty"`
}

// progressBroker is an in-memory pub/sub keyed by project name,
// fanning job-run lifecycle events out to connected websocket clients.
type progressBroker struct {
	mu   sync.Mutex
	subs map[string][]chan progressEvent
}

func newProgressBroker() *progressBroker {
	return &progressBroker{subs: make(map[string][]chan progressEvent)}
}

func (b *progressBroker) subscribe(projectName string) chan progressEvent {
	ch := make(chan progressEvent, 8)
	b.mu.Lock()
	b.subs[projectName] = append(b.subs[projectName], ch)
	b.mu.Unlock()
	return ch
}

func (b *progressBroker) unsubscribe(projectName string, ch chan progressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[projectName]
	for i, c := range subs {
		if c == ch {
			b.subs[projectName] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *progressBroker) publish(evt progressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[evt.ProjectName] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks, serving the API on cfg.Addr.
func (s *Server) ListenAndServe() error {
	s.logger.Info("httpapi listening", zap.String("addr", s.cfg.Addr))
	if err := http.ListenAndServe(s.cfg.Addr, s.router); err != nil {
		return fmt.Errorf("httpapi: listen: %w", err)
	}
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(s.rateLimitMiddleware())

	corsConfig := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	r.Use(corsConfig.Handler)

	r.Route("/projects/{name}", func(r chi.Router) {
		r.Get("/", s.handleGetProject)
		r.Post("/jobs/{jobID}/run", s.handleRunJob)
		r.Post("/agent/turns", s.handleAgentTurn)
	})
	r.Get("/projects/{name}/progress", s.handleProgress)

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// rateLimitMiddleware limits requests per remote address, the same
// per-key token-bucket approach as the teacher's RateLimitMiddleware,
// built on golang.org/x/time/rate instead of a hand-rolled limiter.
func (s *Server) rateLimitMiddleware() func(http.Handler) http.Handler {
	rps := s.cfg.RateLimitRPS
	if rps <= 0 {
		rps = 10
	}
	burst := s.cfg.RateLimitBurst
	if burst <= 0 {
		burst = 20
	}
	limiters := map[string]*rate.Limiter{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			l, ok := limiters[key]
			if !ok {
				l = rate.NewLimiter(rate.Limit(rps), burst)
				limiters[key] = l
			}
			if !l.Allow() {
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%.0f", rps))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) projectPath(name string) string {
	return s.cfg.ProjectRoot + "/" + name + "/project.json"
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := project.Load(s.projectPath(name))
	if err != nil {
		httpError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type runJobRequest struct {
	Approved bool `json:"approved"`
}

func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	jobID := chi.URLParam(r, "jobID")

	var req runJobRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if !req.Approved {
		httpError(w, http.StatusForbidden, fmt.Errorf("job run requires approval"))
		return
	}

	p, err := project.Load(s.projectPath(name))
	if err != nil {
		httpError(w, http.StatusNotFound, err)
		return
	}

	job, err := runner.LookupJob(p, jobID)
	if err != nil {
		httpError(w, http.StatusNotFound, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	s.progress.publish(progressEvent{ProjectName: name, JobID: jobID, Stage: "started"})

	ref, cacheHit := s.resultFromCache(ctx, p, job)
	if !cacheHit {
		ref, err = runner.RunJob(ctx, p, jobID, s.cfg.ResultsRoot)
		if err != nil {
			s.progress.publish(progressEvent{ProjectName: name, JobID: jobID, Stage: "failed", Error: err.Error()})
			httpError(w, http.StatusUnprocessableEntity, err)
			return
		}
		if s.cache != nil {
			if err := s.cache.SetResultDir(ctx, ref.JobHash, ref.ResultDir); err != nil {
				s.logger.Warn("cache set result dir", zap.Error(err))
			}
		}
	}
	appendResultRefIfAbsent(p, ref)
	if err := project.Save(p, s.projectPath(name)); err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	if s.store != nil {
		if err := s.store.UpsertProject(ctx, p); err != nil {
			s.logger.Warn("pgstore upsert project", zap.Error(err))
		}
		if err := s.store.RecordJob(ctx, name, ref, job); err != nil {
			s.logger.Warn("pgstore record job", zap.Error(err))
		}
		if err := s.store.AppendAudit(ctx, name, fmt.Sprintf("job %s run -> %s", job.ID, ref.JobHash)); err != nil {
			s.logger.Warn("pgstore append audit", zap.Error(err))
		}
	}

	s.progress.publish(progressEvent{ProjectName: name, JobID: jobID, Stage: "completed", JobHash: ref.JobHash})
	writeJSON(w, http.StatusOK, ref)
}

// resultFromCache consults the memory/Redis result-dir cache ahead of
// the filesystem content-addressed check runner.RunJob performs on its
// own, so a horizontally-scaled deployment can skip re-running a
// backend another instance already computed for the same job hash.
func (s *Server) resultFromCache(ctx context.Context, p *project.Project, job project.JobSpec) (project.JobResultRef, bool) {
	if s.cache == nil {
		return project.JobResultRef{}, false
	}
	jobHash, err := runner.ComputeJobHash(p, job, runner.BackendVersion)
	if err != nil {
		return project.JobResultRef{}, false
	}
	dir, ok := s.cache.ResultDirFor(ctx, jobHash)
	if !ok {
		return project.JobResultRef{}, false
	}
	return project.JobResultRef{
		JobID:     job.ID,
		JobHash:   jobHash,
		ResultDir: dir,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}, true
}

func appendResultRefIfAbsent(p *project.Project, ref project.JobResultRef) {
	for _, existing := range p.Results {
		if existing.JobID == ref.JobID && existing.JobHash == ref.JobHash {
			return
		}
	}
	p.Results = append(p.Results, ref)
}

type agentTurnRequest struct {
	Intent  string          `json:"intent" validate:"required,max=2000"`
	Flags   map[string]bool `json:"approval_flags"`
	DiffOps map[string]bool `json:"selected_diff_ops"`
}

func (s *Server) handleAgentTurn(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req agentTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := s.rt.Execute(s.projectPath(name), req.Intent, agent.Approvals{
		Flags:           req.Flags,
		SelectedDiffOps: req.DiffOps,
	})
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleProgress streams the job started/completed/failed events that
// handleRunJob publishes to a connected client over a websocket,
// grounded in the teacher's realtime/collaboration notification
// services. No per-sample-batch events are sent.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("progress upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	name := chi.URLParam(r, "name")
	events := s.progress.subscribe(name)
	defer s.progress.unsubscribe(name, events)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
