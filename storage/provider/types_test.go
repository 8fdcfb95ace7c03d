package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, path, want string
	}{
		{"", "a/b", "a/b"},
		{"meters", "a/b", "meters/a/b"},
		{"meters/", "a/b", "meters/a/b"},
		{"meters/", "/a/b", "meters/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix+"+"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, objectKey(tt.prefix, tt.path))
		})
	}
}

func TestTrimKeyPrefix(t *testing.T) {
	assert.Equal(t, "a/b", trimKeyPrefix("", "a/b"))
	assert.Equal(t, "a/b", trimKeyPrefix("meters", "meters/a/b"))
	assert.Equal(t, "a/b", trimKeyPrefix("meters/", "meters/a/b"))
	assert.Equal(t, "other/a", trimKeyPrefix("meters", "other/a"))
}
