package handler

import (
	"net/http"

	"github.com/itchan-dev/postdesk/internal/bindings"
	"github.com/itchan-dev/postdesk/internal/render"
)

const (
	indexTemplate = "index.html"
	feedTemplate  = "feed.html"
)

// Index is the editable page. The category and q query parameters change the
// active filter and search before rendering.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	state, err := h.applyView(r)
	if err != nil {
		writeErrorAndLog(w, err)
		return
	}
	h.renderTemplate(w, r, indexTemplate, state, h.page(state, render.Editable))
}

// Feed shows the same posts without edit or delete controls.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	state, err := h.applyView(r)
	if err != nil {
		writeErrorAndLog(w, err)
		return
	}
	h.renderTemplate(w, r, feedTemplate, state, h.page(state, render.ReadOnly))
}

// PostList renders only the list, for live search.
func (h *Handler) PostList(w http.ResponseWriter, r *http.Request) {
	state, err := h.applyView(r)
	if err != nil {
		writeErrorAndLog(w, err)
		return
	}
	mode := render.ParseMode(r.URL.Query().Get("mode"))
	h.renderList(w, r, h.page(state, mode))
}

// applyView dispatches filter and search intents for the query parameters present.
func (h *Handler) applyView(r *http.Request) (bindings.State, error) {
	query := r.URL.Query()
	if query.Has("category") {
		if _, err := h.controller.Dispatch(bindings.Event{Intent: bindings.Filter, Value: query.Get("category")}); err != nil {
			return bindings.State{}, err
		}
	}
	if query.Has("q") {
		if _, err := h.controller.Dispatch(bindings.Event{Intent: bindings.Search, Value: query.Get("q")}); err != nil {
			return bindings.State{}, err
		}
	}
	return h.controller.State(), nil
}
