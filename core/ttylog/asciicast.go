package ttylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

// Terminal dimensions written to asciicast headers when none are known.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

func writeJSONLine(w io.Writer, structure interface{}) error {
	line, err := json.Marshal(structure)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", string(line))
	return err
}

// AsciicastHeader is the first line of an asciicast v2 recording.
type AsciicastHeader struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Title     string            `json:"title,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// NewAsciicastLogSink creates a LogSink compatible with the asciicast v2
// format. The header is written with the first event.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
func NewAsciicastLogSink(w io.Writer, width, height int, shell string) LogSink {
	var (
		firstLogTimeMicros int64
		once               sync.Once
	)

	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	return func(e *Event) error {
		var headerErr error
		once.Do(func() {
			firstLogTimeMicros = e.TimestampMicros
			headerErr = writeJSONLine(w, &AsciicastHeader{
				Version:   2,
				Width:     width,
				Height:    height,
				Timestamp: time.UnixMicro(firstLogTimeMicros).Unix(),
				Title:     "shesh session",
				Env: map[string]string{
					"TERM":  "xterm-256color",
					"SHELL": shell,
				},
			})
		})
		if headerErr != nil {
			return headerErr
		}

		deltaSecond := microsecondsToSeconds(e.TimestampMicros - firstLogTimeMicros)

		switch e.Stream {
		case StreamInput:
			return writeJSONLine(w, &asciicastLogLine{deltaSecond, "i", string(e.Data)})
		case StreamOutput, StreamError:
			// Asciicast doesn't support stderr so it's collapsed into stdout.
			return writeJSONLine(w, &asciicastLogLine{deltaSecond, "o", string(e.Data)})
		default:
			return fmt.Errorf("unknown stream: %d", e.Stream)
		}
	}
}

type AsciicastLogSource struct {
	r             *bufio.Reader
	consumeHeader sync.Once
	header        AsciicastHeader
	headerErr     error
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an Asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

func (log *AsciicastLogSource) readHeader() {
	log.consumeHeader.Do(func() {
		line, err := log.r.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			log.headerErr = err
			return
		}
		if err := json.Unmarshal(line, &log.header); err != nil {
			log.headerErr = fmt.Errorf("malformed header: %w", err)
			return
		}
		if log.header.Version != 2 {
			log.headerErr = fmt.Errorf("unsupported asciicast version: %d", log.header.Version)
		}
	})
}

// Header returns the recording's header.
func (log *AsciicastLogSource) Header() (AsciicastHeader, error) {
	log.readHeader()
	return log.header, log.headerErr
}

// Next gets the next log entry, it returns io.EOF if there are no more.
func (log *AsciicastLogSource) Next() (*Event, error) {
	log.readHeader()
	if log.headerErr != nil {
		return nil, log.headerErr
	}

	for {
		line, err := log.r.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			return nil, err
		}

		if len(line) <= 1 {
			// Skip blank lines
			continue
		}

		var asciicastLine asciicastLogLine
		if err := json.Unmarshal(line, &asciicastLine); err != nil {
			return nil, err
		}

		var stream Stream
		switch asciicastLine.EventType {
		case "o":
			stream = StreamOutput
		case "i":
			stream = StreamInput
		default:
			// skip unknown events
			continue
		}

		return &Event{
			TimestampMicros: secondsToMicroseconds(asciicastLine.TimeSeconds),
			Stream:          stream,
			Data:            []byte(asciicastLine.EventData),
		}, nil
	}
}

type asciicastLogLine struct {
	TimeSeconds float64
	EventType   string
	EventData   string
}

func (log *asciicastLogLine) UnmarshalJSON(data []byte) error {
	var v []interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if count := len(v); count != 3 {
		return fmt.Errorf("malformed line, expected 3 entries got %d", count)
	}

	var timeOk, typeOk, dataOk bool
	log.TimeSeconds, timeOk = v[0].(float64)
	log.EventType, typeOk = v[1].(string)
	log.EventData, dataOk = v[2].(string)

	if !timeOk || !typeOk || !dataOk {
		return fmt.Errorf("malformed data in line: %q", v)
	}

	return nil
}

func (log *asciicastLogLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{log.TimeSeconds, log.EventType, log.EventData})
}

func microsecondsToSeconds(microseconds int64) (seconds float64) {
	return (float64(microseconds) * float64(time.Microsecond)) / float64(time.Second)
}

func secondsToMicroseconds(seconds float64) (microseconds int64) {
	return int64(float64(seconds)*float64(time.Second)) / int64(time.Microsecond)
}
