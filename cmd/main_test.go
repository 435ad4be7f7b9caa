package main

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestRunMain_ExitCodes(t *testing.T) {
	t.Setenv("LOG_LEVEL", "disabled")

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", want: 0},
		{name: "failure", err: errors.New("boom"), want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			old := execute
			execute = func(context.Context) error { return tc.err }
			t.Cleanup(func() { execute = old })

			if got := runMain(context.Background()); got != tc.want {
				t.Fatalf("exit code=%d want %d", got, tc.want)
			}
		})
	}
}

func TestRunMain_SignalCancelsContext(t *testing.T) {
	t.Setenv("LOG_LEVEL", "disabled")

	started := make(chan struct{})
	old := execute
	execute = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}
	t.Cleanup(func() { execute = old })

	done := make(chan int, 1)
	go func() { done <- runMain(context.Background()) }()

	<-started
	// Send SIGTERM to current process
	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("exit code=%d want 0", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("context not cancelled after SIGTERM")
	}
}
