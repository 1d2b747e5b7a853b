package service

// Keys of the two independent persisted slots.
const (
	PostsKey = "posts"
	ThemeKey = "theme"
)

// KVStorage is the persistence boundary. Get reports ok=false for an absent key.
type KVStorage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}
