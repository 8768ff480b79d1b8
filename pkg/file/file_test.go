package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string        `yaml:"name"`
	Secret  string        `yaml:"secret"`
	Timeout time.Duration `yaml:"timeout"`
}

func TestReadYamlFile_ExpandsEnv(t *testing.T) {
	t.Setenv("PCREMOTE_TEST_SECRET", "s3cr3t")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: desk\nsecret: ${PCREMOTE_TEST_SECRET}\ntimeout: 2s\n"), 0o600))

	var got sample
	require.NoError(t, NewFileService().ReadYamlFile(path, &got))

	assert.Equal(t, sample{Name: "desk", Secret: "s3cr3t", Timeout: 2 * time.Second}, got)
}

func TestReadYamlFile_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: desk\ncolour: blue\n"), 0o600))

	var got sample
	assert.Error(t, NewFileService().ReadYamlFile(path, &got))
}

func TestDecodeYaml_Empty(t *testing.T) {
	var got sample
	assert.EqualError(t, DecodeYaml(nil, &got), "empty YAML document")
}

func TestIsFileExists(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "ca.pem")

	ok, err := fs.IsFileExists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("pem"), 0o600))
	ok, err = fs.IsFileExists(path)
	require.NoError(t, err)
	assert.True(t, ok)

	raw, err := fs.ReadFileRaw(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("pem"), raw)
}
