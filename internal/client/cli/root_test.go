package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoot_RunsREPLUntilExit(t *testing.T) {
	ta := newTestApp(t, "status\nhelp\nexit\n")
	ta.config.OnlineCheckInterval = 0

	ta.Root(context.Background())

	out := ta.out.String()
	assert.Contains(t, out, "Welcome to applylog")
	assert.Contains(t, out, "(not logged in)")
	assert.Contains(t, out, "register")
	assert.Contains(t, out, "Bye!")
}

func TestRoot_StopsOnEOF(t *testing.T) {
	ta := newTestApp(t, "")
	ta.config.OnlineCheckInterval = 0

	ta.Root(context.Background())
	assert.Contains(t, ta.out.String(), "applylog> ")
}
