package service

import (
	"fmt"
	"time"

	"github.com/itchan-dev/postdesk/internal/domain"
)

// MockKVStorage is a map-backed KVStorage whose calls can be overridden.
type MockKVStorage struct {
	data    map[string]string
	getFunc func(key string) (string, bool, error)
	setFunc func(key, value string) error
	sets    int
}

func newMockKVStorage() *MockKVStorage {
	return &MockKVStorage{data: make(map[string]string)}
}

func (m *MockKVStorage) Get(key string) (string, bool, error) {
	if m.getFunc != nil {
		return m.getFunc(key)
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockKVStorage) Set(key, value string) error {
	m.sets++
	if m.setFunc != nil {
		return m.setFunc(key, value)
	}
	m.data[key] = value
	return nil
}

type fixedImages struct{}

func (fixedImages) ImageFor(seed string) string {
	return "https://img.test/seed/" + seed
}

// testClock advances one second per call so edits get distinct timestamps.
func testClock() func() time.Time {
	t := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIds() func() (domain.PostId, error) {
	n := 0
	return func() (domain.PostId, error) {
		n++
		return fmt.Sprintf("id-%03d", n), nil
	}
}

func newTestPosts(storage KVStorage, opts ...PostsOption) *Posts {
	opts = append([]PostsOption{WithClock(testClock()), WithIdGenerator(sequentialIds())}, opts...)
	return NewPosts(storage, NewDraftValidator(nil), fixedImages{}, opts...)
}
