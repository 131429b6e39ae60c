package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDataFiles(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "old.csv")
	recent := filepath.Join(dir, "recent.xlsx")
	ignored := filepath.Join(dir, "notes.md")

	require.NoError(t, os.WriteFile(old, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(recent, []byte("b"), 0644))
	require.NoError(t, os.WriteFile(ignored, []byte("c"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))

	// Make modification order deterministic.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	files, err := FindDataFiles(dir)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "recent.xlsx", files[0].Name)
	assert.Equal(t, "old.csv", files[1].Name)
}

func TestFindDataFiles_MissingDir(t *testing.T) {
	_, err := FindDataFiles(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
