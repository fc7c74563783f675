package ids

import "github.com/segmentio/ksuid"

// Generator produces a fresh unique id carrying the given prefix.
type Generator func(prefix string) string

func New() string {
	return ksuid.New().String()
}

func WithPrefix(prefix string) string {
	return prefix + New()
}
