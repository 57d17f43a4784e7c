// Package ttylog records and replays terminal sessions.
package ttylog

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Stream identifies which standard stream an event passed through.
type Stream int

const (
	StreamInput Stream = iota
	StreamOutput
	StreamError
)

// Event is a single chunk of terminal input or output.
type Event struct {
	TimestampMicros int64
	Stream          Stream
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Event) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available event. It returns io.EOF if the source
	// has no more events.
	Next() (*Event, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	return newPlayback(maxSleep, time.Sleep, next)
}

func newPlayback(maxSleep time.Duration, sleep func(time.Duration), next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Event) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if maxSleep > 0 && delta > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewClientOutput writes stdout and stderr to the given writer.
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Event) error {
		if e.Stream == StreamInput {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder tees the shell's standard streams into a LogSink.
type Recorder struct {
	mutex  sync.Mutex
	output LogSink
	log    zerolog.Logger
	now    func() time.Time

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRecorder creates a recorder that forwards all events to output. Sink
// failures are logged and never interrupt the session.
func NewRecorder(stdin io.Reader, stdout, stderr io.Writer, output LogSink, log zerolog.Logger) *Recorder {
	recorder := &Recorder{
		output: output,
		log:    log,
		now:    time.Now,
	}

	recorder.stdin = &recorderReader{r: recorder, stream: StreamInput, wrapped: stdin}
	recorder.stdout = &recorderWriter{r: recorder, stream: StreamOutput, wrapped: stdout}
	recorder.stderr = &recorderWriter{r: recorder, stream: StreamError, wrapped: stderr}

	return recorder
}

func (r *Recorder) Stdin() io.Reader  { return r.stdin }
func (r *Recorder) Stdout() io.Writer { return r.stdout }
func (r *Recorder) Stderr() io.Writer { return r.stderr }

func (r *Recorder) record(stream Stream, data []byte) {
	if len(data) == 0 {
		return
	}

	// Callers may reuse their buffers.
	copied := make([]byte, len(data))
	copy(copied, data)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	err := r.output(&Event{
		TimestampMicros: r.now().UnixMicro(),
		Stream:          stream,
		Data:            copied,
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("couldn't record event")
	}
}

type recorderReader struct {
	r       *Recorder
	stream  Stream
	wrapped io.Reader
}

var _ io.Reader = (*recorderReader)(nil)

func (rc *recorderReader) Read(p []byte) (int, error) {
	n, err := rc.wrapped.Read(p)
	rc.r.record(rc.stream, p[:n])
	return n, err
}

type recorderWriter struct {
	r       *Recorder
	stream  Stream
	wrapped io.Writer
}

var _ io.Writer = (*recorderWriter)(nil)

func (rc *recorderWriter) Write(p []byte) (int, error) {
	n, err := rc.wrapped.Write(p)
	rc.r.record(rc.stream, p[:n])
	return n, err
}
