package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get("JWT")
	assert.False(t, ok)

	require.NoError(t, s.Set(map[string]string{"JWT": "tok", "userlogin": "alice"}))
	v, ok := s.Get("userlogin")
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Remove("JWT", "userlogin", "missing"))
	assert.Equal(t, 0, s.Len())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "session.yaml")
	s := NewFileStore(path)

	_, ok := s.Get("JWT")
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.Set(map[string]string{"JWT": "tok", "userlogin": "alice"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A second store over the same file sees the values
	other := NewFileStore(path)
	v, ok := other.Get("JWT")
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, s.Remove("JWT"))
	_, ok = other.Get("JWT")
	assert.False(t, ok)
	v, _ = other.Get("userlogin")
	assert.Equal(t, "alice", v)

	// Removing the last key deletes the file
	require.NoError(t, s.Remove("userlogin"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Idempotent on a missing file
	require.NoError(t, s.Remove("userlogin"))
}

func TestFileStoreCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unclosed flow sequence", "JWT: [unclosed"},
		{"not a mapping", "- a\n- b\n"},
		{"nested value", "JWT:\n  nested: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			s := NewFileStore(path)
			_, ok := s.Get("JWT")
			assert.False(t, ok)

			// Set replaces the bad content
			require.NoError(t, s.Set(map[string]string{"JWT": "tok"}))
			v, ok := s.Get("JWT")
			assert.True(t, ok)
			assert.Equal(t, "tok", v)

			// Remove deletes a corrupt file outright
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			require.NoError(t, s.Remove("JWT"))
			_, err := os.Stat(path)
			assert.True(t, os.IsNotExist(err))
			require.NoError(t, s.Remove("JWT"))
		})
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	s := NewFileStore(path)

	w, err := s.Watch()
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.NoError(t, s.Set(map[string]string{"JWT": "tok"}))
	select {
	case ev := <-w.Events:
		assert.Equal(t, path, ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change event after Set")
	}

	// Drain anything else produced by the write
	drain(w)

	require.NoError(t, s.Remove("JWT"))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-w.Events:
			if ev.Removed {
				return
			}
		case <-deadline:
			t.Fatal("expected a removal event after the last key was removed")
		}
	}
}

func drain(w *Watcher) {
	for {
		select {
		case <-w.Events:
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}
