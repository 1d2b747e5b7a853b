package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchan-dev/postdesk/internal/bindings"
	"github.com/itchan-dev/postdesk/internal/config"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
	"github.com/itchan-dev/postdesk/internal/handler"
	"github.com/itchan-dev/postdesk/internal/logger"
	"github.com/itchan-dev/postdesk/internal/markdown"
	"github.com/itchan-dev/postdesk/internal/middleware/metrics"
	"github.com/itchan-dev/postdesk/internal/render"
	"github.com/itchan-dev/postdesk/internal/service"
	"github.com/itchan-dev/postdesk/internal/storage/fs"
	"github.com/itchan-dev/postdesk/internal/storage/memory"
	"github.com/itchan-dev/postdesk/internal/storage/pg"
)

// Storage is what every backend provides to the rest of the program.
type Storage interface {
	service.KVStorage
	Cleanup() error
}

type Dependencies struct {
	Handler    *handler.Handler
	Controller *bindings.Controller
	Storage    Storage
	CancelFunc context.CancelFunc
}

// Cleanup stops background work and releases storage.
func (d *Dependencies) Cleanup() error {
	d.CancelFunc()
	return d.Storage.Cleanup()
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	ctx, cancel := context.WithCancel(context.Background())

	store, health, err := newStorage(cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	posts := cfg.Public.Posts
	validator := service.NewDraftValidator(posts.Categories)
	images := service.Picsum{
		BaseURL: cfg.Public.Images.BaseURL,
		Width:   cfg.Public.Images.Width,
		Height:  cfg.Public.Images.Height,
	}
	postStore := service.NewPosts(store, validator, images, service.WithTimestampLayout(posts.TimestampLayout))
	controller := bindings.New(postStore, service.NewEditSession(postStore, validator), service.NewThemePreference(store))
	controller.Subscribe(func(s bindings.State) {
		metrics.ObservePosts(len(s.Posts), len(s.Visible))
	})
	initial := controller.State()
	metrics.ObservePosts(len(initial.Posts), len(initial.Visible))
	logger.Log.Info("posts loaded", "count", len(initial.Posts), "theme", initial.Theme, "backend", cfg.Public.Storage.Backend)

	var content render.ContentRenderer
	if posts.Markdown {
		content = markdown.New()
	}
	pipeline := render.New(content, posts.TitleMaxLen, posts.ContentMaxLen)

	templates, err := render.LoadTemplates()
	if err != nil {
		cancel()
		store.Cleanup()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	h := handler.New(templates, observedController{controller}, pipeline, cfg.Public, health)

	if err := startWatcher(ctx, cfg.Public.Storage, store, controller); err != nil {
		cancel()
		store.Cleanup()
		return nil, err
	}

	return &Dependencies{
		Handler:    h,
		Controller: controller,
		Storage:    store,
		CancelFunc: cancel,
	}, nil
}

// newStorage opens the configured backend. The health checker is nil for
// backends that have nothing to ping.
func newStorage(cfg *config.Config) (Storage, handler.HealthChecker, error) {
	switch cfg.Public.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), nil, nil
	case config.BackendFS:
		store, err := fs.New(cfg.Public.Storage.FSPath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.BackendPg:
		store, err := pg.New(cfg.Private.Pg, pg.LightweightConnectionConfig())
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Public.Storage.Backend)
	}
}

// startWatcher reloads the controller whenever another process rewrites a slot.
func startWatcher(ctx context.Context, cfg config.Storage, store Storage, controller *bindings.Controller) error {
	if !cfg.Watch {
		return nil
	}
	watched, ok := store.(*fs.Storage)
	if !ok {
		logger.Log.Warn("storage watch is only supported by the fs backend, ignoring", "backend", cfg.Backend)
		return nil
	}
	err := watched.Watch(ctx, func(key string) {
		if _, err := controller.Dispatch(bindings.Event{Intent: bindings.Reload}); err != nil {
			logger.Log.Warn("reload after external change failed", "key", key, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch storage: %w", err)
	}
	return nil
}

// observedController counts dispatched events by outcome.
type observedController struct {
	*bindings.Controller
}

func (c observedController) Dispatch(e bindings.Event) (bindings.State, error) {
	state, err := c.Controller.Dispatch(e)
	metrics.ObserveEvent(string(e.Intent), outcome(err))
	return state, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case internal_errors.IsWarning(err):
		return "warning"
	case errors.Is(err, internal_errors.InvalidInput), errors.Is(err, internal_errors.NotFound), errors.Is(err, internal_errors.NoActiveSession):
		return "rejected"
	default:
		return "failed"
	}
}
