package service

import (
	"errors"
	"fmt"

	"github.com/itchan-dev/postdesk/internal/domain"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
)

// PostUpdater is the part of the post store an edit session commits through.
type PostUpdater interface {
	Update(id domain.PostId, draft domain.PostDraft) (domain.Post, error)
}

// EditTarget is the post under edit and the id of the node it is rendered in.
type EditTarget struct {
	Post   domain.Post
	NodeId string
}

// EditSession holds at most one in-flight edit. Opening a new edit replaces
// the current one without warning.
type EditSession struct {
	posts     PostUpdater
	validator PostValidator
	active    *EditTarget
}

func NewEditSession(posts PostUpdater, validator PostValidator) *EditSession {
	return &EditSession{posts: posts, validator: validator}
}

// Open starts editing post and returns the form prefilled with its current values.
func (s *EditSession) Open(post domain.Post, nodeId string) domain.PostDraft {
	s.active = &EditTarget{Post: post, NodeId: nodeId}
	return post.Draft()
}

// Commit validates draft and saves it to the post under edit.
// Invalid input keeps the session open; any other outcome closes it.
func (s *EditSession) Commit(draft domain.PostDraft) (domain.Post, error) {
	if _, err := s.validator.Draft(draft); err != nil {
		return domain.Post{}, err
	}
	if s.active == nil {
		return domain.Post{}, internal_errors.NoActiveSession
	}

	post, err := s.posts.Update(s.active.Post.Id, draft)
	if err != nil && errors.Is(err, internal_errors.InvalidInput) {
		return domain.Post{}, err
	}
	s.active = nil
	if err != nil && !internal_errors.IsWarning(err) {
		return domain.Post{}, fmt.Errorf("saving edit: %w", err)
	}
	return post, err
}

func (s *EditSession) Cancel() {
	s.active = nil
}

func (s *EditSession) Active() (EditTarget, bool) {
	if s.active == nil {
		return EditTarget{}, false
	}
	return *s.active, true
}
