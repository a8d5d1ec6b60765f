package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/errexplain/internal/application/analysis"
	appquota "github.com/bryanwahyu/errexplain/internal/application/quota"
	appvotes "github.com/bryanwahyu/errexplain/internal/application/votes"
	"github.com/bryanwahyu/errexplain/internal/domain/analysis"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
	"github.com/bryanwahyu/errexplain/internal/domain/language"
	"github.com/bryanwahyu/errexplain/internal/domain/quota"
	domvotes "github.com/bryanwahyu/errexplain/internal/domain/votes"
	"github.com/bryanwahyu/errexplain/internal/middleware"
)

// maxBodyBytes leaves room for a 10k-rune message in any encoding.
const maxBodyBytes = 256 << 10

type Router struct {
	analysisSvc *appanalysis.Service
	votesSvc    *appvotes.Service
	ledger      *appquota.Ledger
	logger      *slog.Logger
}

// Options carries the optional HTTP plumbing.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// RateLimit is the per-IP burst limiter; nil disables it.
	RateLimit *middleware.RateLimiter
	AdminKey  string
	// Checks feed /health; Required feed /ready.
	Checks   map[string]middleware.HealthChecker
	Required map[string]middleware.HealthChecker
}

func NewRouter(analysisSvc *appanalysis.Service, votesSvc *appvotes.Service, ledger *appquota.Ledger, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{analysisSvc: analysisSvc, votesSvc: votesSvc, ledger: ledger, logger: logger}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware(logger))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	if opts.RateLimit != nil {
		mux.Use(middleware.RateLimitMiddleware(opts.RateLimit))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Checks))
	mux.Get("/ready", middleware.ReadinessHandler(opts.Required))
	mux.Get("/live", middleware.LivenessHandler)
	mux.With(middleware.AdminKeyAuth(opts.AdminKey)).Handle("/metrics", middleware.MetricsHandler())

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/rate-limit", r.wrap(r.handleRateLimit))
		rt.Get("/history", r.wrap(r.handleHistory))
		rt.Delete("/submissions/{id}", r.wrap(r.handleDelete))
		rt.Post("/share", r.wrap(r.handleShare))
		rt.Get("/shared/{shareId}", r.wrap(r.handleShared))
		rt.Get("/shared/{shareId}/votes", r.wrap(r.handleSharedVotes))
		rt.Post("/vote", r.wrap(r.handleVote))
		rt.Post("/classify", r.wrap(r.handleClassify))
		rt.Get("/languages", r.wrap(r.handleLanguages))
		rt.Get("/samples", r.wrap(r.handleSamples))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var exceeded *quota.ExceededError
		switch {
		case apperr.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &exceeded):
			middleware.RecordQuotaDenied()
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":    exceeded.Error(),
				"resetsAt": exceeded.ResetsAt,
			})
		case errors.Is(err, quota.ErrQuotaExceeded):
			middleware.RecordQuotaDenied()
			writeError(w, http.StatusTooManyRequests, "daily quota exceeded")
		case errors.Is(err, apperr.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, apperr.ErrUnauthorized):
			writeError(w, http.StatusForbidden, "you do not own this submission")
		case errors.Is(err, apperr.ErrUpstreamUnavailable):
			middleware.RecordUpstreamFailure(routeOf(req))
			r.logger.Error("upstream failure", "path", req.URL.Path, "error", err)
			writeError(w, http.StatusBadGateway, "analysis service is temporarily unavailable, please try again")
		default:
			r.logger.Error("request failed", "path", req.URL.Path, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func routeOf(req *http.Request) string {
	if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
		return rc.RoutePattern()
	}
	return req.URL.Path
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, req *http.Request, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		return apperr.Invalid("", "invalid JSON body")
	}
	return nil
}

// POST /v1/analyze
// Body: {"errorMessage": "...", "language": "Go", "clientId": "...", "isPrivate": false}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ErrorMessage string `json:"errorMessage"`
		Language     string `json:"language"`
		ClientID     string `json:"clientId"`
		IsPrivate    bool   `json:"isPrivate"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateClientID(body.ClientID); err != nil {
		return err
	}

	res, err := r.analysisSvc.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		ClientID:     body.ClientID,
		ErrorMessage: middleware.SanitizeString(body.ErrorMessage),
		Language:     middleware.SanitizeString(body.Language),
		IsPrivate:    body.IsPrivate,
	})
	if err != nil {
		return err
	}

	outcome := "parsed"
	if res.Degraded {
		outcome = "fallback"
	}
	middleware.RecordAnalysis(outcome)
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/rate-limit?clientId=
func (r *Router) handleRateLimit(w http.ResponseWriter, req *http.Request) error {
	clientID := req.URL.Query().Get("clientId")
	if err := middleware.ValidateClientID(clientID); err != nil {
		return err
	}
	st, err := r.ledger.Status(req.Context(), clientID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, st)
}

// GET /v1/history?clientId=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	clientID := req.URL.Query().Get("clientId")
	if err := middleware.ValidateClientID(clientID); err != nil {
		return err
	}
	h, err := r.analysisSvc.History(req.Context(), clientID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, h)
}

// DELETE /v1/submissions/{id}?clientId=
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	clientID := req.URL.Query().Get("clientId")
	if err := middleware.ValidateSubmissionID(id); err != nil {
		return err
	}
	if err := middleware.ValidateClientID(clientID); err != nil {
		return err
	}
	if err := r.analysisSvc.Delete(req.Context(), analysis.SubmissionID(id), clientID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/share
// Body: {"id": "<submission id>", "clientId": "..."}
func (r *Router) handleShare(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ID       string `json:"id"`
		ClientID string `json:"clientId"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateSubmissionID(body.ID); err != nil {
		return err
	}
	if err := middleware.ValidateClientID(body.ClientID); err != nil {
		return err
	}
	res, err := r.analysisSvc.Share(req.Context(), analysis.SubmissionID(body.ID), body.ClientID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/shared/{shareId}
func (r *Router) handleShared(w http.ResponseWriter, req *http.Request) error {
	shareID := chi.URLParam(req, "shareId")
	if err := middleware.ValidateShareID(shareID); err != nil {
		return err
	}
	view, err := r.analysisSvc.LookupShared(req.Context(), shareID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, view)
}

// GET /v1/shared/{shareId}/votes
func (r *Router) handleSharedVotes(w http.ResponseWriter, req *http.Request) error {
	shareID := chi.URLParam(req, "shareId")
	if err := middleware.ValidateShareID(shareID); err != nil {
		return err
	}
	tallies, err := r.votesSvc.Tallies(req.Context(), shareID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"shareId": shareID, "votes": tallies})
}

// POST /v1/vote
// Body: {"shareId": "...", "solutionIndex": 0, "userFingerprint": "...", "voteType": "helpful"}
func (r *Router) handleVote(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ShareID         string `json:"shareId"`
		SolutionIndex   *int   `json:"solutionIndex"`
		UserFingerprint string `json:"userFingerprint"`
		VoteType        string `json:"voteType"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if body.SolutionIndex == nil {
		return apperr.Invalid("solutionIndex", "is required")
	}
	if err := middleware.ValidateShareID(body.ShareID); err != nil {
		return err
	}
	if err := middleware.ValidateFingerprint(body.UserFingerprint); err != nil {
		return err
	}

	tally, err := r.votesSvc.Vote(req.Context(), appvotes.VoteCommand{
		ShareID:         body.ShareID,
		SolutionIndex:   *body.SolutionIndex,
		UserFingerprint: body.UserFingerprint,
		VoteType:        domvotes.VoteType(body.VoteType),
	})
	if err != nil {
		return err
	}
	middleware.RecordVote(body.VoteType)
	return writeJSON(w, http.StatusOK, tally)
}

// POST /v1/classify
// Body: {"text": "...", "language": "Python"}
func (r *Router) handleClassify(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	text := analysis.Truncate(middleware.SanitizeString(body.Text), analysis.MaxErrorMessageLen)
	if text == "" {
		return apperr.Invalid("text", "is required")
	}
	return writeJSON(w, http.StatusOK, language.Check(text, language.Label(body.Language)))
}

// GET /v1/languages
func (r *Router) handleLanguages(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{"languages": language.Labels()})
}

// GET /v1/samples?language=
func (r *Router) handleSamples(w http.ResponseWriter, req *http.Request) error {
	label := language.Label(req.URL.Query().Get("language"))
	if label == "" {
		label = language.Other
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"language": label,
		"samples":  language.Samples(label),
	})
}
