package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/5w1tchy/shelfbot/internal/llm"
	"github.com/5w1tchy/shelfbot/internal/security/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// byMessage answers each user message with a canned model output.
type byMessage map[string]string

func (b byMessage) Complete(_ context.Context, msg, _ string, _ []llm.Turn) (string, error) {
	return b[msg], nil
}

func execute(t *testing.T, gw llm.Gateway, stdin string, args ...string) (string, error) {
	t.Helper()
	prev := newGateway
	newGateway = func(context.Context, *zap.Logger) (llm.Gateway, error) { return gw, nil }
	t.Cleanup(func() {
		newGateway = prev
		useMemory = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

const addDune = `{"intent":"add","data":{"title":"Dune","authors":["Frank Herbert"],"year":1965}}`

func TestAsk(t *testing.T) {
	gw := byMessage{"add dune": addDune}
	out, err := execute(t, gw, "", "--memory", "ask", "add", "dune")
	require.NoError(t, err)
	assert.Equal(t, "Added \"Dune\" by Frank Herbert (1965).\n", out)
}

func TestAsk_FailedCommandExitsNonZero(t *testing.T) {
	gw := byMessage{"delete emma": `{"intent":"delete","criteria":{"title":"Emma"}}`}
	out, err := execute(t, gw, "", "--memory", "ask", "delete emma")
	assert.ErrorIs(t, err, errNotDone)
	assert.NotEmpty(t, out)
}

func TestRepl_KeepsCatalogueAcrossTurns(t *testing.T) {
	gw := byMessage{
		"add dune":       addDune,
		"show all books": `{"intent":"list_all"}`,
	}
	out, err := execute(t, gw, "add dune\n\nshow all books\nexit\n", "--memory", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Dune"`)
	assert.Contains(t, out, `1. "Dune" by Frank Herbert (1965)`)
}

func TestBooks_Empty(t *testing.T) {
	out, err := execute(t, nil, "", "--memory", "books")
	require.NoError(t, err)
	assert.Equal(t, "No books yet.\n", out)
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, nil, "correct horse battery staple\n", "hash-password")
	require.NoError(t, err)

	phc := strings.TrimSpace(out[strings.LastIndex(strings.TrimSpace(out), "\n")+1:])
	ok, _, err := password.Verify("correct horse battery staple", phc)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = execute(t, nil, "short\n", "hash-password")
	assert.ErrorIs(t, err, password.ErrTooShort)
}
