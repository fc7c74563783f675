package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPrefixUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := WithPrefix("chat")
		assert.True(t, strings.HasPrefix(id, "chat"))
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
