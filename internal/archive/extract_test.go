package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qm-layer/internal/diagnostic"
)

// writeJar creates a zip archive holding the given entries.
func writeJar(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "artifact.jar")

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)

		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}

func TestExtractMappings(t *testing.T) {
	jar := writeJar(t, map[string]string{
		"META-INF/MANIFEST.MF":   "Manifest-Version: 1.0\n",
		"mappings/mappings.tiny": "tiny\t2\t0\tofficial\tnamed\n",
	})

	var buf bytes.Buffer
	require.NoError(t, ExtractMappings(jar, &buf))
	assert.Equal(t, "tiny\t2\t0\tofficial\tnamed\n", buf.String())
}

func TestExtractMappingsErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		kind    error
	}{
		{
			name:    "no mappings entry",
			entries: map[string]string{"META-INF/MANIFEST.MF": ""},
			kind:    diagnostic.ErrNotFound,
		},
		{
			name: "two mappings entries",
			entries: map[string]string{
				"mappings/mappings.tiny": "a",
				"extra/mappings.tiny":    "b",
			},
			kind: diagnostic.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExtractMappings(writeJar(t, tt.entries), &bytes.Buffer{})
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestExtractMappingsNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	err := ExtractMappings(path, &bytes.Buffer{})
	assert.ErrorIs(t, err, diagnostic.ErrIO)
}
