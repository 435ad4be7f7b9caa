package middleware

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/logger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd(run RunE) *cobra.Command {
	cmd := &cobra.Command{Use: "tick", RunE: run, SilenceUsage: true, SilenceErrors: true}
	cmd.SetArgs([]string{})
	return cmd
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next RunE) RunE {
			return func(cmd *cobra.Command, args []string) error {
				order = append(order, name+">")
				err := next(cmd, args)
				order = append(order, "<"+name)
				return err
			}
		}
	}

	run := Chain(func(*cobra.Command, []string) error {
		order = append(order, "body")
		return nil
	}, mw("a"), mw("b"))

	require.NoError(t, run(&cobra.Command{}, nil))
	assert.Equal(t, []string{"a>", "b>", "body", "<b", "<a"}, order)
}

func TestCommandID(t *testing.T) {
	var got string
	cmd := newCmd(Chain(func(cmd *cobra.Command, _ []string) error {
		got = CommandIDFrom(cmd.Context())
		return nil
	}, CommandID()))

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	_, err := uuid.Parse(got)
	assert.NoError(t, err, "command id %q", got)
}

func TestCommandIDFrom_Missing(t *testing.T) {
	assert.Equal(t, "", CommandIDFrom(context.Background()))
	assert.Equal(t, "", CommandIDFrom(nil))
}

func TestCommandLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(nopWriter{}) })

	boom := errors.New("boom")
	cases := []struct {
		name    string
		err     error
		wantLvl string
	}{
		{name: "success", wantLvl: `"level":"info"`},
		{name: "failure", err: boom, wantLvl: `"level":"error"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			cmd := newCmd(Chain(func(*cobra.Command, []string) error { return tc.err }, CommandID(), CommandLogger()))
			err := cmd.ExecuteContext(context.Background())
			assert.ErrorIs(t, err, tc.err)

			out := buf.String()
			assert.Contains(t, out, tc.wantLvl)
			assert.Contains(t, out, `"command":"tick"`)
			assert.Contains(t, out, `"command_id":"`)
			assert.Contains(t, out, `"latency_ms":`)
		})
	}
}

func TestRecovery(t *testing.T) {
	logger.SetOutput(nopWriter{})

	cmd := newCmd(Chain(func(*cobra.Command, []string) error { panic("boom") }, Recovery()))
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)

	var resp dto.ErrorResponse
	require.True(t, errors.As(err, &resp))
	assert.Equal(t, "Internal error", resp.Message)
	assert.True(t, strings.Contains(resp.ErrorDetails, "boom"))
}

func TestWrap_AppliesToSubcommands(t *testing.T) {
	calls := 0
	count := func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			calls++
			return next(cmd, args)
		}
	}

	root := &cobra.Command{Use: "root"}
	child := &cobra.Command{Use: "child", RunE: func(*cobra.Command, []string) error { return nil }}
	grandchild := &cobra.Command{Use: "leaf", RunE: func(*cobra.Command, []string) error { return nil }}
	child.AddCommand(grandchild)
	root.AddCommand(child)

	Wrap(root, count)
	require.Nil(t, root.RunE)

	root.SetArgs([]string{"child", "leaf"})
	require.NoError(t, root.Execute())
	assert.Equal(t, 1, calls)

	root.SetArgs([]string{"child"})
	require.NoError(t, root.Execute())
	assert.Equal(t, 2, calls)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
