package concurrent

import (
	"errors"
	"sync"
	"time"
)

var ErrScheduleTimeout = errors.New("schedule error: timed out")

type JobFunc[T any, G any] func(job T) G

// WorkerPool runs either typed jobs (Start/AddJob/Wait/CollectResults) or
// plain task closures (Spawn/Schedule/ScheduleTimeout). the two modes share
// the pool but use separate worker sets.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup

	tasks  chan func()
	taskWg sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
		tasks:      make(chan func(), jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(id int, jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		res := jobFunc(job)
		wp.results <- res
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i, jobFunc)
	}
}

func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

// Spawn starts n task workers consuming closures given to Schedule.
func (wp *WorkerPool[T, G]) Spawn(n int) {
	for i := 0; i < n; i++ {
		wp.taskWg.Add(1)
		go wp.taskWorker()
	}
}

func (wp *WorkerPool[T, G]) taskWorker() {
	defer wp.taskWg.Done()
	for task := range wp.tasks {
		task()
	}
}

func (wp *WorkerPool[T, G]) Schedule(task func()) {
	wp.tasks <- task
}

// ScheduleTimeout gives up with ErrScheduleTimeout when every task worker
// stays busy for the whole timeout.
func (wp *WorkerPool[T, G]) ScheduleTimeout(timeout time.Duration, task func()) error {
	select {
	case wp.tasks <- task:
		return nil
	case <-time.After(timeout):
		return ErrScheduleTimeout
	}
}

func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
	close(wp.tasks)
}
