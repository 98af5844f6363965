package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPrompts(t *testing.T) {
	p := DefaultPrompts()
	assert.Contains(t, p.Command, `"intent"`)
	assert.NotEmpty(t, p.Conversation)
	assert.Contains(t, p.Help, "Add a book")
}

func TestLoadPrompts_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("help: |\n  custom help\n"), 0o600))

	p, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, "custom help\n", p.Help)
	assert.Equal(t, DefaultPrompts().Command, p.Command)
}

func TestLoadPrompts_Errors(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("help: [unclosed"), 0o600))
	_, err = LoadPrompts(path)
	assert.Error(t, err)
}
