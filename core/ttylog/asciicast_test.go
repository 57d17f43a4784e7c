package ttylog

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeConversions(t *testing.T) {
	cases := map[string]struct {
		microseconds int64
		seconds      float64
	}{
		"precision": {
			microseconds: 1,
			seconds:      1e-6,
		},
		"negative": {
			microseconds: -631119539e6,
			seconds:      -631119539,
		},
		"positive": {
			microseconds: 631119539e6,
			seconds:      631119539,
		},
		"bigprecise": {
			microseconds: 123456789987654,
			seconds:      123456789.987654,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s2m := secondsToMicroseconds(tc.seconds)
			m2s := microsecondsToSeconds(tc.microseconds)

			// Only allow delta to be to the NS
			assert.InDelta(t, m2s, tc.seconds, float64(time.Nanosecond)/float64(time.Second))
			assert.Equal(t, s2m, tc.microseconds)
		})
	}
}

func TestAsciicast_roundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAsciicastLogSink(&buf, 0, 0, "/bin/shesh")

	events := []*Event{
		{TimestampMicros: 1000000, Stream: StreamOutput, Data: []byte("shesh> ")},
		{TimestampMicros: 1500000, Stream: StreamInput, Data: []byte("l")},
		{TimestampMicros: 2000000, Stream: StreamError, Data: []byte("oops\r\n")},
	}
	for _, e := range events {
		require.NoError(t, sink(e))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `[0.5,"i","l"]`, lines[2])
	assert.Equal(t, `[1,"o","oops\r\n"]`, lines[3])

	source := NewAsciicastLogSource(&buf)
	header, err := source.Header()
	require.NoError(t, err)
	assert.Equal(t, 2, header.Version)
	assert.Equal(t, DefaultWidth, header.Width)
	assert.Equal(t, DefaultHeight, header.Height)
	assert.Equal(t, int64(1), header.Timestamp)
	assert.Equal(t, "/bin/shesh", header.Env["SHELL"])

	var got []*Event
	require.NoError(t, Replay(source, func(e *Event) error {
		got = append(got, e)
		return nil
	}))

	assert.Equal(t, []*Event{
		{TimestampMicros: 0, Stream: StreamOutput, Data: []byte("shesh> ")},
		{TimestampMicros: 500000, Stream: StreamInput, Data: []byte("l")},
		{TimestampMicros: 1000000, Stream: StreamOutput, Data: []byte("oops\r\n")},
	}, got)
}

func TestAsciicastLogSource_errors(t *testing.T) {
	cases := map[string]string{
		"bad-header":  "not json\n",
		"bad-version": `{"version":1,"width":80,"height":24}` + "\n",
		"bad-line":    `{"version":2,"width":80,"height":24}` + "\n[1, \"o\"]\n",
		"bad-types":   `{"version":2,"width":80,"height":24}` + "\n[\"1\", \"o\", \"x\"]\n",
	}

	for tn, input := range cases {
		t.Run(tn, func(t *testing.T) {
			err := Replay(NewAsciicastLogSource(strings.NewReader(input)), func(*Event) error {
				return nil
			})
			assert.Error(t, err)
		})
	}
}

func TestAsciicastLogSource_skips(t *testing.T) {
	input := `{"version":2,"width":80,"height":24}` + "\n\n[0.1, \"r\", \"80x24\"]\n[0.2, \"o\", \"hi\"]"

	var got []string
	err := Replay(NewAsciicastLogSource(strings.NewReader(input)), func(e *Event) error {
		got = append(got, string(e.Data))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"hi"}, got)
}

func TestAsciicastLogSource_empty(t *testing.T) {
	err := Replay(NewAsciicastLogSource(strings.NewReader("")), func(*Event) error {
		return errors.New("unexpected event")
	})
	assert.NoError(t, err)
}
