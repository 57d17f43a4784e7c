package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
)

// Messages the shell logs that reports understand.
const (
	MsgLineAccepted  = "line accepted"
	MsgSegmentFailed = "segment failed"
	MsgStartupFailed = "startup command failed"
	MsgJobStarted    = "job started"
	MsgJobFinished   = "job finished"
)

// Entry is a single decoded log line.
type Entry map[string]interface{}

// Str returns the string field key, or the empty string.
func (e Entry) Str(key string) string {
	s, _ := e[key].(string)
	return s
}

// Message is the entry's log message.
func (e Entry) Message() string {
	return e.Str(zerologMessageField)
}

const (
	zerologMessageField = "message"
	zerologLevelField   = "level"
	zerologErrorField   = "error"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(e Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return err
		}

		handler(entry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int        `json:"log_entries"`
	Sessions   StrCounter `json:"sessions"`
	Levels     StrCounter `json:"levels"`

	// Commands counts the first word of every accepted line.
	Commands StrCounter   `json:"commands"`
	Failures *PathCounter `json:"failures"`
	Startup  *PathCounter `json:"startup_failures"`
	Jobs     JobReport    `json:"jobs"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		Failures: NewPathCounter("kind", "error"),
		Startup:  NewPathCounter("command", "error"),
	}
}

// JobReport counts background jobs.
type JobReport struct {
	Started  int `json:"started"`
	Finished int `json:"finished"`
	Failed   int `json:"failed"`
}

func (r *Report) Update(e Entry) {
	r.LogEntries++
	if session := e.Str(sessionField); session != "" {
		r.Sessions.Increment(session)
	}
	r.Levels.Increment(e.Str(zerologLevelField))

	switch e.Message() {
	case MsgLineAccepted:
		if fields := strings.Fields(e.Str("line")); len(fields) > 0 {
			r.Commands.Increment(fields[0])
		}
	case MsgSegmentFailed:
		r.Failures.Increment(e.Str("kind"), e.Str(zerologErrorField))
	case MsgStartupFailed:
		r.Startup.Increment(e.Str("command"), e.Str(zerologErrorField))
	case MsgJobStarted:
		r.Jobs.Started++
	case MsgJobFinished:
		r.Jobs.Finished++
		if e.Str(zerologErrorField) != "" {
			r.Jobs.Failed++
		}
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns how many times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// Len is the number of distinct keys.
func (s *StrCounter) Len() int {
	return len(s.internal)
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count returns how many times the tuple was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements a custom JSON marshaler, the most common tuples
// come first.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
