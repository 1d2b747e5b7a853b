package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/itchan-dev/postdesk/internal/logger"
	"github.com/itchan-dev/postdesk/internal/service"
)

const slotExt = ".slot"

// Storage keeps every slot in its own file under rootPath.
type Storage struct {
	rootPath string

	mu          sync.RWMutex
	lastWritten map[string]string // last known content per slot, to tell own writes from external edits
}

// Ensure Storage struct implements the interface at compile time.
var _ service.KVStorage = (*Storage)(nil)

func New(rootPath string) (*Storage, error) {
	// Use filepath.Clean to prevent path traversal issues like "data/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p, lastWritten: make(map[string]string)}, nil
}

func (s *Storage) slotPath(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid slot key %q", key)
	}
	return filepath.Join(s.rootPath, key+slotExt), nil
}

// Get reads a slot. A missing file is an absent key, not an error.
func (s *Storage) Get(key string) (string, bool, error) {
	path, err := s.slotPath(key)
	if err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set replaces a slot atomically: write a temp file next to it, then rename.
func (s *Storage) Set(key, value string) error {
	path, err := s.slotPath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.rootPath, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for slot %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName) // Best effort, ignore error here.
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close slot %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace slot %s: %w", key, err)
	}

	s.lastWritten[key] = value
	return nil
}

// Watch calls onChange with the slot key whenever a slot file is changed by
// someone other than this Storage. It stops when ctx is done.
func (s *Storage) Watch(ctx context.Context, onChange func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(s.rootPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.rootPath, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				key, relevant := s.slotKey(event)
				if !relevant || !s.changedExternally(key) {
					continue
				}
				logger.Log.Info("slot changed outside the process", "key", key, "op", event.Op.String())
				onChange(key)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Warn("slot watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (s *Storage) slotKey(event fsnotify.Event) (string, bool) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, slotExt) {
		return "", false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	return strings.TrimSuffix(name, slotExt), true
}

// changedExternally compares the slot on disk with what this Storage last wrote or saw,
// and remembers the new content so repeated events for one change fire once.
func (s *Storage) changedExternally(key string) bool {
	value, ok, err := s.Get(key)
	if err != nil {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last, known := s.lastWritten[key]
	if !ok {
		delete(s.lastWritten, key)
		return known
	}
	if known && value == last {
		return false
	}
	s.lastWritten[key] = value
	return true
}

func (s *Storage) Cleanup() error {
	return nil
}
