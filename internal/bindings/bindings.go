// Package bindings turns user intents into post store, edit session and theme
// operations. Every event goes through one mutex, so the rest of the program
// sees a single logical thread no matter how many requests arrive at once.
package bindings

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/itchan-dev/postdesk/internal/domain"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
	"github.com/itchan-dev/postdesk/internal/logger"
	"github.com/itchan-dev/postdesk/internal/render"
	"github.com/itchan-dev/postdesk/internal/service"
)

type Intent string

const (
	Submit   Intent = "submit"
	Keypress Intent = "keypress"
	Edit     Intent = "edit"
	Delete   Intent = "delete"
	Search   Intent = "search"
	Filter   Intent = "filter"
	Save     Intent = "save"
	Cancel   Intent = "cancel"
	Theme    Intent = "theme"
	Reload   Intent = "reload"
)

// Event is one user action. Only the fields relevant to the intent are read.
type Event struct {
	Intent Intent
	PostId domain.PostId
	Draft  domain.PostDraft
	Value  string // search query or category filter
	Key    string
	Shift  bool
}

// State is a snapshot of everything a page needs.
type State struct {
	Posts   []domain.Post
	Visible []domain.Post
	Filter  domain.Category
	Query   string
	Theme   domain.Theme
	FreshId domain.PostId

	// Draft holds rejected new-post input so the form can be shown again.
	Draft domain.PostDraft

	Editing   bool
	EditId    domain.PostId
	EditNode  string
	EditDraft domain.PostDraft
}

type Listener func(State)

type PostStore interface {
	Load()
	Add(draft domain.PostDraft) (domain.Post, error)
	Remove(id domain.PostId) error
	Get(id domain.PostId) (domain.Post, error)
	All() []domain.Post
}

type EditSession interface {
	Open(post domain.Post, nodeId string) domain.PostDraft
	Commit(draft domain.PostDraft) (domain.Post, error)
	Cancel()
	Active() (service.EditTarget, bool)
}

type ThemeStore interface {
	Load()
	Current() domain.Theme
	Toggle() (domain.Theme, error)
}

type Controller struct {
	mu sync.Mutex

	posts   PostStore
	session EditSession
	theme   ThemeStore

	filter    domain.Category
	query     string
	freshId   domain.PostId
	draft     domain.PostDraft
	editDraft domain.PostDraft

	listeners []Listener
}

// New loads the persisted posts and theme and returns a controller showing everything.
func New(posts PostStore, session EditSession, theme ThemeStore) *Controller {
	posts.Load()
	theme.Load()
	return &Controller{
		posts:   posts,
		session: session,
		theme:   theme,
		filter:  domain.CategoryAll,
	}
}

// Subscribe registers l to receive a snapshot after every dispatch. Listeners run
// with the controller locked and must not call back into it.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Dispatch applies e and returns the resulting state. A *errors.PersistWarning
// error means the change was applied in memory only.
func (c *Controller) Dispatch(e Event) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.apply(e)
	if err != nil && !internal_errors.IsWarning(err) {
		logger.Log.Debug("event rejected", "intent", e.Intent, "error", err)
	}

	state := c.snapshot()
	for _, l := range c.listeners {
		l(state)
	}
	return state, err
}

func (c *Controller) apply(e Event) error {
	if e.Intent != Search && e.Intent != Filter {
		c.freshId = ""
	}

	switch e.Intent {
	case Submit:
		return c.submit(e.Draft)
	case Keypress:
		if e.Key != "Enter" || e.Shift {
			return nil
		}
		return c.submit(e.Draft)
	case Edit:
		post, err := c.posts.Get(e.PostId)
		if err != nil {
			return err
		}
		c.editDraft = c.session.Open(post, render.NodeId(post.Id))
		return nil
	case Delete:
		return c.posts.Remove(e.PostId)
	case Search:
		c.query = e.Value
		return nil
	case Filter:
		c.filter = strings.TrimSpace(e.Value)
		if c.filter == "" {
			c.filter = domain.CategoryAll
		}
		return nil
	case Save:
		return c.save(e.Draft)
	case Cancel:
		c.session.Cancel()
		c.editDraft = domain.PostDraft{}
		return nil
	case Theme:
		_, err := c.theme.Toggle()
		return err
	case Reload:
		c.posts.Load()
		c.theme.Load()
		return nil
	default:
		return fmt.Errorf("%w: unknown intent %q", internal_errors.InvalidInput, e.Intent)
	}
}

func (c *Controller) submit(draft domain.PostDraft) error {
	post, err := c.posts.Add(draft)
	if err != nil && !internal_errors.IsWarning(err) {
		c.draft = draft
		return err
	}
	c.draft = domain.PostDraft{}
	c.freshId = post.Id
	c.resetView()
	return err
}

func (c *Controller) save(draft domain.PostDraft) error {
	_, err := c.session.Commit(draft)
	if errors.Is(err, internal_errors.InvalidInput) {
		c.editDraft = draft
		return err
	}
	c.editDraft = domain.PostDraft{}
	if err != nil && !internal_errors.IsWarning(err) {
		return err
	}
	c.resetView()
	return err
}

// resetView shows every post again, as after a fresh page load.
func (c *Controller) resetView() {
	c.filter = domain.CategoryAll
	c.query = ""
}

func (c *Controller) snapshot() State {
	all := c.posts.All()
	state := State{
		Posts:   all,
		Visible: service.Visible(all, c.filter, c.query),
		Filter:  c.filter,
		Query:   c.query,
		Theme:   c.theme.Current(),
		FreshId: c.freshId,
		Draft:   c.draft,
	}
	if target, ok := c.session.Active(); ok {
		state.Editing = true
		state.EditId = target.Post.Id
		state.EditNode = target.NodeId
		state.EditDraft = c.editDraft
	}
	if !slices.ContainsFunc(state.Visible, func(p domain.Post) bool { return p.Id == state.FreshId }) {
		state.FreshId = ""
	}
	return state
}
