package systems

import (
	"sync"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/cockroachdb/errors"
)

// JobTask describes a unit of work executed by the job system workers.
type JobTask struct {
	Name        string
	InputParams interface{}
	// OnStart runs on a worker goroutine and produces the job result.
	OnStart    func(params interface{}) (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
	// OnCompletionCallback runs after OnComplete/OnFailure in every case.
	OnCompletionCallback func()
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	result, err := job.OnStart(job.InputParams)
	if err != nil {
		core.LogError("job %s failed: %v", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(result)
	}

	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

// Shutdown stops accepting jobs and waits for the queued ones to finish.
func (js *JobSystem) Shutdown() error {
	js.closeOnce.Do(func() {
		close(js.jobQueue)
	})
	js.wg.Wait()
	return nil
}

// Submit queues the job. It blocks while the queue is full.
func (js *JobSystem) Submit(jt JobTask) {
	js.jobQueue <- jt
}
