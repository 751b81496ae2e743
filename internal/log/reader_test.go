package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSessions_MissingDir(t *testing.T) {
	sessions, err := ListSessions(filepath.Join(t.TempDir(), "logs"))
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestReadSessionLogs(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.RecordFailure("Widget", "widget.nsi", "widget output", errors.New("exit status 1"))
	require.NoError(t, err)
	_, err = s.RecordFailure("Alpha", "alpha.nsi", "alpha output", nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.SessionDir(), "notes.txt"), []byte("x"), 0644))

	logs, err := ReadSessionLogs(s.SessionDir())
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Alpha", logs[0].Name)
	assert.Contains(t, logs[0].Content, "alpha output")
	assert.NotContains(t, logs[0].Content, "# Error:")
	assert.Equal(t, "Widget", logs[1].Name)
}

func TestReadProjectLog(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.RecordFailure("My App", "app.nsi", "output", errors.New("boom"))
	require.NoError(t, err)

	content, err := ReadProjectLog(s.SessionDir(), "My App")
	require.NoError(t, err)
	assert.Contains(t, content, "# Error: boom")

	_, err = ReadProjectLog(s.SessionDir(), "Other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no log found for Other")
}

func TestListSessions_Sorted(t *testing.T) {
	base := t.TempDir()
	for _, id := range []string{"20260102T000000", "20260101T000000", "20260103T000000"} {
		require.NoError(t, os.MkdirAll(filepath.Join(base, id), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(base, "20260104T000000"), nil, 0644))

	sessions, err := ListSessions(base)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "20260103T000000", sessions[0].ID)
	assert.Equal(t, "20260101T000000", sessions[2].ID)
}
