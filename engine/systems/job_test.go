package systems

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestNewJobSystemRejectsBadConfig(t *testing.T) {
	if _, err := NewJobSystem(0, 1); !errors.Is(err, ErrNoWorkers) {
		t.Fatalf("got %v", err)
	}
	if _, err := NewJobSystem(1, -1); !errors.Is(err, ErrNegativeChannelSize) {
		t.Fatalf("got %v", err)
	}
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(3, 4)
	if err != nil {
		t.Fatal(err)
	}

	var completed, failed, finished atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		js.Submit(JobTask{
			Name:        "square",
			InputParams: i,
			OnStart: func(params interface{}) (interface{}, error) {
				n := params.(int)
				if n%2 == 1 {
					return nil, errors.Newf("odd %d", n)
				}
				return n * n, nil
			},
			OnComplete: func(result interface{}) {
				if result.(int)%4 != 0 {
					t.Errorf("unexpected result %v", result)
				}
				completed.Add(1)
			},
			OnFailure:            func(error) { failed.Add(1) },
			OnCompletionCallback: func() { finished.Add(1); wg.Done() },
		})
	}
	wg.Wait()

	if completed.Load() != 5 || failed.Load() != 5 || finished.Load() != 10 {
		t.Fatalf("completed=%d failed=%d finished=%d", completed.Load(), failed.Load(), finished.Load())
	}
	if err := js.Shutdown(); err != nil {
		t.Fatal(err)
	}
	// second shutdown must not panic on a closed channel
	if err := js.Shutdown(); err != nil {
		t.Fatal(err)
	}
}

func TestJobSystemShutdownDrainsQueue(t *testing.T) {
	js, err := NewJobSystem(1, 8)
	if err != nil {
		t.Fatal(err)
	}
	var ran atomic.Int32
	for i := 0; i < 8; i++ {
		js.Submit(JobTask{OnStart: func(interface{}) (interface{}, error) {
			ran.Add(1)
			return nil, nil
		}})
	}
	_ = js.Shutdown()
	if ran.Load() != 8 {
		t.Fatalf("ran %d jobs, want 8", ran.Load())
	}
}
