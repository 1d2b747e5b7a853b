package service

import (
	"strings"

	"github.com/itchan-dev/postdesk/internal/domain"
)

// Visible returns the posts matching category ("all" or empty matches every category)
// whose title, or failing that content, contains query case-insensitively. Order is preserved.
func Visible(posts []domain.Post, category domain.Category, query string) []domain.Post {
	query = strings.ToLower(query)
	visible := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if category != domain.CategoryAll && category != "" && post.Category != category {
			continue
		}
		if !matches(post, query) {
			continue
		}
		visible = append(visible, post)
	}
	return visible
}

func matches(post domain.Post, query string) bool {
	return strings.Contains(strings.ToLower(post.Title), query) ||
		strings.Contains(strings.ToLower(post.Content), query)
}
