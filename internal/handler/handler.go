package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/itchan-dev/postdesk/internal/bindings"
	"github.com/itchan-dev/postdesk/internal/config"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
	"github.com/itchan-dev/postdesk/internal/logger"
	"github.com/itchan-dev/postdesk/internal/render"
)

// Dispatcher is the single entry point for user intents.
type Dispatcher interface {
	Dispatch(e bindings.Event) (bindings.State, error)
	State() bindings.State
}

// HealthChecker reports whether storage can serve requests.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Templates  map[string]*template.Template
	controller Dispatcher
	pipeline   *render.Pipeline
	public     config.Public
	health     HealthChecker
}

// New builds a handler. health may be nil for backends without a connection to check.
func New(templates map[string]*template.Template, controller Dispatcher, pipeline *render.Pipeline, public config.Public, health HealthChecker) *Handler {
	return &Handler{
		Templates:  templates,
		controller: controller,
		pipeline:   pipeline,
		public:     public,
		health:     health,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode JSON response", "error", err)
	}
}

func writeErrorAndLog(w http.ResponseWriter, err error) {
	status := internal_errors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Error("internal error", "error", err)
		http.Error(w, "Internal error", status)
		return
	}
	http.Error(w, userMessage(err), status)
}

// userMessage turns an error into the sentence shown in the page notification.
func userMessage(err error) string {
	switch {
	case errors.Is(err, internal_errors.InvalidInput):
		return capitalize(strings.TrimPrefix(err.Error(), internal_errors.InvalidInput.Error()+": "))
	case errors.Is(err, internal_errors.NotFound):
		return "That post no longer exists."
	case errors.Is(err, internal_errors.NoActiveSession):
		return "No post is being edited."
	case internal_errors.IsWarning(err):
		return "Your change is shown but could not be saved. It will be lost on restart."
	default:
		return "Something went wrong. Please try again."
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
