package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("DOCMIND_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"absolute untouched", "/tmp/docmind.db", "/tmp/docmind.db"},
		{"tilde prefix", "~/docmind.db", filepath.Join(home, "docmind.db")},
		{"bare tilde", "~", home},
		{"env var", "$DOCMIND_TEST_DIR/docmind.db", "/var/data/docmind.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	path := DefaultDatabasePath()
	assert.True(t, filepath.IsAbs(path) || path == "docmind.db")
	assert.Equal(t, "docmind.db", filepath.Base(path))
}
