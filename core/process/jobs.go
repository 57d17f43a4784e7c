package process

import (
	"sort"
	"sync"
	"time"

	"github.com/josephlewis42/shesh/core/logger"
	"github.com/josephlewis42/shesh/core/shell"
	"github.com/rs/zerolog"
)

// Job is a unit of work running in the background.
type Job struct {
	ID      int
	Command string
	Started time.Time

	done chan struct{}

	mu       sync.Mutex
	finished time.Time
	err      error
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Finished reports whether the job has completed.
func (j *Job) Finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Err returns the job's result, nil while it's still running.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Wait blocks until the job finishes and returns its result.
func (j *Job) Wait() error {
	<-j.done
	return j.Err()
}

// Status is a short human readable state.
func (j *Job) Status() string {
	switch {
	case !j.Finished():
		return "Running"
	case j.Err() != nil:
		return "Exit"
	default:
		return "Done"
	}
}

func (j *Job) finish(at time.Time, err error) {
	j.mu.Lock()
	j.finished = at
	j.err = err
	j.mu.Unlock()
	close(j.done)
}

// Jobs tracks background work. It's safe for concurrent use.
type Jobs struct {
	log zerolog.Logger
	now func() time.Time

	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
}

// NewJobs creates an empty job table.
func NewJobs(log zerolog.Logger) *Jobs {
	return &Jobs{
		log:    log,
		now:    time.Now,
		nextID: 1,
		jobs:   make(map[int]*Job),
	}
}

// Start runs fn on its own goroutine and records it as command.
func (t *Jobs) Start(command string, fn func() error) *Job {
	t.mu.Lock()
	job := &Job{
		ID:      t.nextID,
		Command: command,
		Started: t.now(),
		done:    make(chan struct{}),
	}
	t.nextID++
	t.jobs[job.ID] = job
	t.mu.Unlock()

	t.log.Info().Int("job", job.ID).Str("command", command).Msg(logger.MsgJobStarted)

	go func() {
		err := fn()
		job.finish(t.now(), err)

		event := t.log.Info()
		if err != nil {
			event = t.log.Warn().Err(err)
		}
		event.Int("job", job.ID).
			Dur("elapsed", job.finished.Sub(job.Started)).
			Msg(logger.MsgJobFinished)
	}()

	return job
}

// List returns the tracked jobs ordered by ID.
func (t *Jobs) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Get looks up a job by ID.
func (t *Jobs) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	return job, ok
}

// Reap forgets finished jobs and returns them ordered by ID.
func (t *Jobs) Reap() []*Job {
	var reaped []*Job
	for _, job := range t.List() {
		if job.Finished() {
			reaped = append(reaped, job)
		}
	}

	t.mu.Lock()
	for _, job := range reaped {
		delete(t.jobs, job.ID)
	}
	t.mu.Unlock()

	return reaped
}

// Wait blocks until the jobs with the given IDs finish, or every tracked job
// if none are given. The lock isn't held while waiting. It returns the error
// of the last job waited for.
func (t *Jobs) Wait(ids ...int) error {
	var toWait []*Job
	if len(ids) == 0 {
		toWait = t.List()
	} else {
		for _, id := range ids {
			job, ok := t.Get(id)
			if !ok {
				return shell.NotFoundf("wait: no such job: %d", id)
			}
			toWait = append(toWait, job)
		}
	}

	var lastErr error
	for _, job := range toWait {
		lastErr = job.Wait()
	}
	return lastErr
}
