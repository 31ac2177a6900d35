package view

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/terra-clan/coding-tracker/internal/models"
)

const (
	// SessionCookieName carries the browser session id
	SessionCookieName = "tracker_session"

	maxFormBytes = 256 * 1024
)

// Handler binds the controller to HTTP: GET / renders, every POST changes
// state and redirects back to GET /.
type Handler struct {
	controller *Controller
	renderer   *Renderer
	sessionTTL time.Duration
}

// NewHandler creates a view Handler
func NewHandler(controller *Controller, renderer *Renderer, sessionTTL time.Duration) *Handler {
	return &Handler{
		controller: controller,
		renderer:   renderer,
		sessionTTL: sessionTTL,
	}
}

// Mount registers the view routes on r
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.handleIndex)

	r.Route("/view", func(r chi.Router) {
		r.Post("/challenges/{challengeID}/select", h.handleSelect)
		r.Post("/submit", h.handleSubmit)
		r.Post("/feedback", h.handleFeedback)
		r.Post("/try-again", h.handleTryAgain)
		r.Post("/back", h.handleBack)
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	state, err := h.controller.Page(r.Context(), session)
	if err != nil {
		slog.Error("failed to prepare page", "session", session, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, state); err != nil {
		slog.Error("failed to render page", "session", session, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	challengeID := chi.URLParam(r, "challengeID")

	h.finish(w, r, session, h.controller.SelectChallenge(r.Context(), session, challengeID))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	code := r.PostFormValue("code")
	language := models.Language(r.PostFormValue("language"))

	h.finish(w, r, session, h.controller.SubmitCode(r.Context(), session, code, language))
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.finish(w, r, session, h.controller.GetFeedback(r.Context(), session))
}

func (h *Handler) handleTryAgain(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.finish(w, r, session, h.controller.TryAgain(r.Context(), session))
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.finish(w, r, session, h.controller.BackToChallenges(r.Context(), session))
}

// finish redirects to the page unless the action hit an internal failure.
// Out-of-order clicks (e.g. a resubmitted form) only get logged.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, session string, err error) {
	if err != nil {
		if !errors.Is(err, ErrInvalidTransition) {
			slog.Error("view action failed", "session", session, "path", r.URL.Path, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		slog.Warn("ignored view action", "session", session, "path", r.URL.Path, "error", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// session returns the browser session id, issuing a new cookie when the
// request carries none. The cookie is refreshed on every request.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	id := ""
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.New().String()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	})

	return id
}
