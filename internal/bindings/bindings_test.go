package bindings

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/itchan-dev/postdesk/internal/domain"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
	"github.com/itchan-dev/postdesk/internal/service"
	"github.com/itchan-dev/postdesk/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStorage fails writes while broken is set.
type flakyStorage struct {
	*memory.Storage
	broken bool
}

func (s *flakyStorage) Set(key, value string) error {
	if s.broken {
		return errors.New("quota exceeded")
	}
	return s.Storage.Set(key, value)
}

type staticImages struct{}

func (staticImages) ImageFor(seed string) string { return "https://img.test/" + seed }

func newTestController(t *testing.T, storage service.KVStorage) *Controller {
	t.Helper()
	n := 0
	validator := service.NewDraftValidator([]domain.Category{"general", "tech", "life", "food"})
	posts := service.NewPosts(storage, validator, staticImages{}, service.WithIdGenerator(func() (domain.PostId, error) {
		n++
		return fmt.Sprintf("id-%03d", n), nil
	}))
	session := service.NewEditSession(posts, validator)
	theme := service.NewThemePreference(storage)
	return New(posts, session, theme)
}

func submit(t *testing.T, c *Controller, title, content, category string) domain.Post {
	t.Helper()
	state, err := c.Dispatch(Event{Intent: Submit, Draft: domain.PostDraft{Title: title, Content: content, Category: category}})
	require.NoError(t, err)
	require.NotEmpty(t, state.Posts)
	return state.Posts[0]
}

func ids(posts []domain.Post) []domain.PostId {
	out := make([]domain.PostId, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Id)
	}
	return out
}

func TestController_AddAndSearch(t *testing.T) {
	c := newTestController(t, memory.New())

	a := submit(t, c, "Trip", "Went hiking", "life")
	b := submit(t, c, "Recipe", "Pasta night", "food")

	state := c.State()
	assert.Equal(t, []domain.PostId{b.Id, a.Id}, ids(state.Posts))
	assert.Equal(t, b.Id, state.FreshId)

	state, err := c.Dispatch(Event{Intent: Search, Value: "pasta"})
	require.NoError(t, err)
	assert.Equal(t, []domain.PostId{b.Id}, ids(state.Visible))
	assert.Equal(t, b.Id, state.FreshId, "searching keeps the fresh marker")

	state, err = c.Dispatch(Event{Intent: Search, Value: ""})
	require.NoError(t, err)
	state, err = c.Dispatch(Event{Intent: Filter, Value: "life"})
	require.NoError(t, err)
	assert.Equal(t, []domain.PostId{a.Id}, ids(state.Visible))
	assert.Empty(t, state.FreshId, "fresh post filtered out of view")
}

func TestController_SubmitInvalid(t *testing.T) {
	c := newTestController(t, memory.New())
	submit(t, c, "Trip", "Went hiking", "life")

	draft := domain.PostDraft{Title: "  ", Content: "x", Category: "life"}
	state, err := c.Dispatch(Event{Intent: Submit, Draft: draft})
	assert.ErrorIs(t, err, internal_errors.InvalidInput)
	assert.Len(t, state.Posts, 1)
	assert.Equal(t, draft, state.Draft, "rejected input is kept for the form")

	state, err = c.Dispatch(Event{Intent: Submit, Draft: domain.PostDraft{Title: "x", Content: "", Category: "life"}})
	assert.ErrorIs(t, err, internal_errors.InvalidInput)
	assert.Len(t, state.Posts, 1)
}

func TestController_SubmitResetsView(t *testing.T) {
	c := newTestController(t, memory.New())
	submit(t, c, "Trip", "Went hiking", "life")

	_, err := c.Dispatch(Event{Intent: Filter, Value: "tech"})
	require.NoError(t, err)
	_, err = c.Dispatch(Event{Intent: Search, Value: "nothing"})
	require.NoError(t, err)

	submit(t, c, "Recipe", "Pasta night", "food")

	state := c.State()
	assert.Equal(t, domain.CategoryAll, state.Filter)
	assert.Empty(t, state.Query)
	assert.Len(t, state.Visible, 2)
	assert.Empty(t, state.Draft)
}

func TestController_Keypress(t *testing.T) {
	c := newTestController(t, memory.New())
	draft := domain.PostDraft{Title: "Trip", Content: "Went hiking", Category: "life"}

	tests := []struct {
		name  string
		key   string
		shift bool
		added bool
	}{
		{"shift enter inserts a newline", "Enter", true, false},
		{"other keys are ignored", "a", false, false},
		{"enter submits", "Enter", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(c.State().Posts)
			state, err := c.Dispatch(Event{Intent: Keypress, Key: tt.key, Shift: tt.shift, Draft: draft})
			require.NoError(t, err)
			if tt.added {
				assert.Len(t, state.Posts, before+1)
			} else {
				assert.Len(t, state.Posts, before)
			}
		})
	}
}

func TestController_EditFlow(t *testing.T) {
	c := newTestController(t, memory.New())
	a := submit(t, c, "Trip", "Went hiking", "life")
	submit(t, c, "Recipe", "Pasta night", "food")

	state, err := c.Dispatch(Event{Intent: Edit, PostId: a.Id})
	require.NoError(t, err)
	require.True(t, state.Editing)
	assert.Equal(t, a.Id, state.EditId)
	assert.Equal(t, "post-"+a.Id, state.EditNode)
	assert.Equal(t, a.Draft(), state.EditDraft)

	t.Run("invalid save keeps dialog open", func(t *testing.T) {
		bad := domain.PostDraft{Title: "", Content: "still here", Category: "life"}
		state, err := c.Dispatch(Event{Intent: Save, Draft: bad})
		assert.ErrorIs(t, err, internal_errors.InvalidInput)
		assert.True(t, state.Editing)
		assert.Equal(t, bad, state.EditDraft)
	})

	t.Run("save", func(t *testing.T) {
		_, err := c.Dispatch(Event{Intent: Filter, Value: "food"})
		require.NoError(t, err)

		state, err := c.Dispatch(Event{Intent: Save, Draft: domain.PostDraft{Title: "Trip Report", Content: "Went hiking and camping", Category: "life"}})
		require.NoError(t, err)
		assert.False(t, state.Editing)
		assert.Equal(t, domain.CategoryAll, state.Filter)

		updated := state.Posts[1]
		assert.Equal(t, a.Id, updated.Id)
		assert.Equal(t, a.ImageURL, updated.ImageURL)
		assert.Equal(t, "Trip Report", updated.Title)
		assert.Equal(t, "Went hiking and camping", updated.Content)
		assert.True(t, updated.Edited)
	})

	t.Run("save without session", func(t *testing.T) {
		_, err := c.Dispatch(Event{Intent: Save, Draft: domain.PostDraft{Title: "t", Content: "c", Category: "life"}})
		assert.ErrorIs(t, err, internal_errors.NoActiveSession)
	})

	t.Run("edit unknown post", func(t *testing.T) {
		state, err := c.Dispatch(Event{Intent: Edit, PostId: "missing"})
		assert.ErrorIs(t, err, internal_errors.NotFound)
		assert.False(t, state.Editing)
	})
}

func TestController_CancelLeavesPostUnchanged(t *testing.T) {
	c := newTestController(t, memory.New())
	a := submit(t, c, "Trip", "Went hiking", "life")

	_, err := c.Dispatch(Event{Intent: Edit, PostId: a.Id})
	require.NoError(t, err)
	state, err := c.Dispatch(Event{Intent: Cancel})
	require.NoError(t, err)

	assert.False(t, state.Editing)
	assert.Equal(t, []domain.Post{a}, state.Posts)
}

func TestController_DeleteWhileEditing(t *testing.T) {
	c := newTestController(t, memory.New())
	a := submit(t, c, "Trip", "Went hiking", "life")

	_, err := c.Dispatch(Event{Intent: Edit, PostId: a.Id})
	require.NoError(t, err)
	_, err = c.Dispatch(Event{Intent: Delete, PostId: a.Id})
	require.NoError(t, err)

	state, err := c.Dispatch(Event{Intent: Save, Draft: domain.PostDraft{Title: "t", Content: "c", Category: "life"}})
	assert.ErrorIs(t, err, internal_errors.NotFound)
	assert.False(t, state.Editing)
	assert.Empty(t, state.Posts)
}

func TestController_DeleteKeepsFilter(t *testing.T) {
	c := newTestController(t, memory.New())
	a := submit(t, c, "Trip", "Went hiking", "life")
	submit(t, c, "Hike 2", "More hiking", "life")
	submit(t, c, "Recipe", "Pasta night", "food")

	_, err := c.Dispatch(Event{Intent: Filter, Value: "life"})
	require.NoError(t, err)
	_, err = c.Dispatch(Event{Intent: Search, Value: "hik"})
	require.NoError(t, err)

	state, err := c.Dispatch(Event{Intent: Delete, PostId: a.Id})
	require.NoError(t, err)
	assert.Equal(t, domain.Category("life"), state.Filter)
	assert.Equal(t, "hik", state.Query)
	assert.Len(t, state.Visible, 1)
	assert.Len(t, state.Posts, 2)

	_, err = c.Dispatch(Event{Intent: Delete, PostId: a.Id})
	assert.NoError(t, err, "deleting twice is a no-op")
}

func TestController_Theme(t *testing.T) {
	storage := memory.New()
	c := newTestController(t, storage)
	assert.Equal(t, domain.ThemeLight, c.State().Theme)

	state, err := c.Dispatch(Event{Intent: Theme})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, state.Theme)

	stored, ok, err := storage.Get(service.ThemeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", stored)
}

func TestController_PersistWarning(t *testing.T) {
	storage := &flakyStorage{Storage: memory.New()}
	c := newTestController(t, storage)
	storage.broken = true

	state, err := c.Dispatch(Event{Intent: Submit, Draft: domain.PostDraft{Title: "Trip", Content: "Went hiking", Category: "life"}})
	require.Error(t, err)
	assert.True(t, internal_errors.IsWarning(err))
	assert.Len(t, state.Posts, 1, "memory keeps the new post")
	assert.Empty(t, state.Draft)

	state, err = c.Dispatch(Event{Intent: Theme})
	assert.True(t, internal_errors.IsWarning(err))
	assert.Equal(t, domain.ThemeDark, state.Theme)
}

func TestController_Reload(t *testing.T) {
	storage := memory.New()
	c := newTestController(t, storage)
	submit(t, c, "Trip", "Went hiking", "life")

	// Another process rewrites both slots.
	require.NoError(t, storage.Set(service.PostsKey, `[{"id":"x","title":"Outside","content":"written elsewhere","category":"tech","timestamp":"t","edited":false,"imageUrl":"u"}]`))
	require.NoError(t, storage.Set(service.ThemeKey, "dark"))

	state, err := c.Dispatch(Event{Intent: Reload})
	require.NoError(t, err)
	assert.Equal(t, []domain.PostId{"x"}, ids(state.Posts))
	assert.Equal(t, domain.ThemeDark, state.Theme)
}

func TestController_UnknownIntent(t *testing.T) {
	c := newTestController(t, memory.New())
	_, err := c.Dispatch(Event{Intent: "dance"})
	assert.ErrorIs(t, err, internal_errors.InvalidInput)
}

func TestController_Subscribe(t *testing.T) {
	c := newTestController(t, memory.New())

	var got []int
	c.Subscribe(func(s State) { got = append(got, len(s.Posts)) })

	submit(t, c, "Trip", "Went hiking", "life")
	_, _ = c.Dispatch(Event{Intent: Submit})
	submit(t, c, "Recipe", "Pasta night", "food")

	assert.Equal(t, []int{1, 1, 2}, got)
}

func TestController_ConcurrentDispatch(t *testing.T) {
	c := newTestController(t, memory.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Dispatch(Event{Intent: Submit, Draft: domain.PostDraft{Title: fmt.Sprintf("post %d", i), Content: "body", Category: "general"}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state := c.State()
	assert.Len(t, state.Posts, 20)
	seen := make(map[domain.PostId]bool)
	for _, p := range state.Posts {
		assert.False(t, seen[p.Id], "duplicate id %s", p.Id)
		seen[p.Id] = true
	}
}
