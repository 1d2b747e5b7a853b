package handler

import (
	"net/http"

	"github.com/itchan-dev/postdesk/internal/domain"
	"github.com/itchan-dev/postdesk/internal/service"
)

type postsResponse struct {
	Posts    []domain.Post   `json:"posts"`
	Total    int             `json:"total"`
	Category domain.Category `json:"category"`
	Query    string          `json:"query"`
	Theme    domain.Theme    `json:"theme"`
}

// ListPosts returns the posts matching the category and q parameters as JSON.
// Unlike the pages it leaves the active filter and search untouched.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	state := h.controller.State()

	category := r.URL.Query().Get("category")
	if category == "" {
		category = domain.CategoryAll
	}
	query := r.URL.Query().Get("q")

	writeJSON(w, postsResponse{
		Posts:    service.Visible(state.Posts, category, query),
		Total:    len(state.Posts),
		Category: category,
		Query:    query,
		Theme:    state.Theme,
	})
}
