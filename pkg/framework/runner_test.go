package framework

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerWait(t *testing.T) {
	boom := errors.New("boom")
	err := NewRunner().Go(
		NamedRun("clean", RunFunc(func(ctx context.Context) error {
			return nil
		})),
		RunFunc(func(ctx context.Context) error {
			return boom
		}),
		RunFunc(func(ctx context.Context) error {
			// Canceled runners do not count as failures.
			return context.Canceled
		}),
	).Wait()
	require.Error(t, err)
	agg, ok := err.(*AggregatedError)
	require.True(t, ok)
	require.Equal(t, []error{boom}, agg.Errors)
}

func TestRunnerWaitClean(t *testing.T) {
	err := NewRunner().Go(
		RunFunc(func(ctx context.Context) error { return nil }),
		RunFunc(func(ctx context.Context) error { return nil }),
	).Wait()
	require.NoError(t, err)
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.TODO())
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- RunWithContextCancel(ctx, func() { close(release) }, func() error {
			<-release
			return errors.New("after cancel")
		})
	}()
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("cancel not honored")
	}
}

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.TODO())
	r, _ := io.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- RunWithContextCloser(ctx, r, func() error {
			// Blocks until the closer unblocks it on cancel.
			buf := make([]byte, 1)
			_, err := r.Read(buf)
			return err
		})
	}()
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("closer not invoked on cancel")
	}
}
