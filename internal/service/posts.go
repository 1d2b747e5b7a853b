package service

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/postdesk/internal/domain"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
	"github.com/itchan-dev/postdesk/internal/logger"
)

const DefaultTimestampLayout = "1/2/2006, 3:04:05 PM"

// Posts is the ordered, newest-first post collection mirrored into the "posts" slot.
// It is not safe for concurrent use; callers serialize access.
type Posts struct {
	storage   KVStorage
	validator PostValidator
	images    ImageSource
	now       func() time.Time
	newId     func() (domain.PostId, error)
	layout    string

	posts []domain.Post
}

type PostsOption func(*Posts)

func WithClock(now func() time.Time) PostsOption {
	return func(p *Posts) { p.now = now }
}

func WithTimestampLayout(layout string) PostsOption {
	return func(p *Posts) { p.layout = layout }
}

func WithIdGenerator(newId func() (domain.PostId, error)) PostsOption {
	return func(p *Posts) { p.newId = newId }
}

func NewPosts(storage KVStorage, validator PostValidator, images ImageSource, opts ...PostsOption) *Posts {
	p := &Posts{
		storage:   storage,
		validator: validator,
		images:    images,
		now:       time.Now,
		newId:     newTimeOrderedId,
		layout:    DefaultTimestampLayout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// UUIDv7 ids sort by creation time and stay unique within the same millisecond.
func newTimeOrderedId() (domain.PostId, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Load replaces the in-memory collection with the persisted one. It never fails:
// a missing, unreadable or malformed slot yields an empty collection.
func (p *Posts) Load() {
	p.posts = nil

	raw, ok, err := p.storage.Get(PostsKey)
	if err != nil {
		logger.Log.Warn("reading posts, starting empty", "error", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var stored []domain.Post
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.Log.Warn("malformed posts slot, starting empty", "error", err)
		return
	}

	seen := make(map[domain.PostId]struct{}, len(stored))
	posts := make([]domain.Post, 0, len(stored))
	for _, post := range stored {
		if _, dup := seen[post.Id]; dup || post.Id == "" {
			logger.Log.Warn("dropping stored post with missing or duplicate id", "id", post.Id)
			continue
		}
		// Category membership is not rechecked: the configured set may have changed since.
		post.Title, post.Content = strings.TrimSpace(post.Title), strings.TrimSpace(post.Content)
		if post.Title == "" || post.Content == "" {
			logger.Log.Warn("dropping stored post with empty title or content", "id", post.Id)
			continue
		}
		seen[post.Id] = struct{}{}
		posts = append(posts, post)
	}
	p.posts = posts
}

// Add creates a post from draft and prepends it. A *errors.PersistWarning error comes
// with a valid post: the collection was updated but not saved.
func (p *Posts) Add(draft domain.PostDraft) (domain.Post, error) {
	draft, err := p.validator.Draft(draft)
	if err != nil {
		return domain.Post{}, err
	}

	id, err := p.newId()
	if err != nil {
		return domain.Post{}, fmt.Errorf("generating post id: %w", err)
	}
	now := p.now()
	post := domain.Post{
		Id:        id,
		Title:     draft.Title,
		Content:   draft.Content,
		Category:  draft.Category,
		Timestamp: now.Format(p.layout),
		Edited:    false,
		ImageURL:  p.images.ImageFor(fmt.Sprintf("%d-%d", now.UnixMilli(), rand.IntN(1000))),
	}

	p.posts = slices.Insert(p.posts, 0, post)
	return post, p.persist()
}

// Update rewrites the editable fields of the post in place, keeping its id and image.
func (p *Posts) Update(id domain.PostId, draft domain.PostDraft) (domain.Post, error) {
	draft, err := p.validator.Draft(draft)
	if err != nil {
		return domain.Post{}, err
	}

	i := p.index(id)
	if i < 0 {
		return domain.Post{}, fmt.Errorf("%w: post %s", internal_errors.NotFound, id)
	}

	post := p.posts[i]
	post.Title = draft.Title
	post.Content = draft.Content
	post.Category = draft.Category
	post.Timestamp = p.now().Format(p.layout)
	post.Edited = true
	p.posts[i] = post

	return post, p.persist()
}

// Remove deletes the post with id. Removing an unknown id is a no-op.
func (p *Posts) Remove(id domain.PostId) error {
	i := p.index(id)
	if i < 0 {
		return nil
	}
	p.posts = slices.Delete(p.posts, i, i+1)
	return p.persist()
}

func (p *Posts) Get(id domain.PostId) (domain.Post, error) {
	i := p.index(id)
	if i < 0 {
		return domain.Post{}, fmt.Errorf("%w: post %s", internal_errors.NotFound, id)
	}
	return p.posts[i], nil
}

// All returns a copy of the collection, newest first.
func (p *Posts) All() []domain.Post {
	return slices.Clone(p.posts)
}

func (p *Posts) index(id domain.PostId) int {
	return slices.IndexFunc(p.posts, func(post domain.Post) bool { return post.Id == id })
}

// persist writes the whole collection. Failures leave memory untouched and are
// reported as a warning.
func (p *Posts) persist() error {
	posts := p.posts
	if posts == nil {
		posts = []domain.Post{}
	}
	data, err := json.Marshal(posts)
	if err != nil {
		return &internal_errors.PersistWarning{Key: PostsKey, Err: err}
	}
	if err := p.storage.Set(PostsKey, string(data)); err != nil {
		logger.Log.Warn("persisting posts failed, keeping in-memory state", "error", err)
		return &internal_errors.PersistWarning{Key: PostsKey, Err: err}
	}
	return nil
}
