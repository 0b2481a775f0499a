package engine

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func TestRunSupervisedStopsLoopOnBackgroundFailure(t *testing.T) {
	watchErr := errors.New("watcher died")
	loop := func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("loop was not stopped")
		}
	}
	failing := func(context.Context) error { return watchErr }

	err := runSupervised(context.Background(), loop, failing)
	if !errors.Is(err, watchErr) {
		t.Fatalf("got %v, want the background error", err)
	}
}

func TestRunSupervisedCancelsBackgroundWhenLoopEnds(t *testing.T) {
	stopped := make(chan struct{})
	background := func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return nil
	}
	loopErr := errors.New("render failed")

	err := runSupervised(context.Background(), func(context.Context) error { return loopErr }, background)
	if !errors.Is(err, loopErr) {
		t.Fatalf("got %v", err)
	}
	select {
	case <-stopped:
	default:
		t.Fatal("background task still running after Run returned")
	}
}

func TestRunSupervisedParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runSupervised(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
