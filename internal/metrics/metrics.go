// Package metrics reports session counters and timings to a statsd daemon.
//
// Buckets (prefix "egk"):
//
//	egk.session.<outcome>   counter, one per finished session
//	egk.session.duration    timing of a whole session
//	egk.bytes.<file>        bytes read from a card file
package metrics

import (
	"time"

	"gopkg.in/alexcesaro/statsd.v2"
)

const prefix = "egk"

// Recorder wraps a statsd client. The zero value and a nil *Recorder drop every metric.
type Recorder struct {
	client *statsd.Client
}

// New connects to the statsd daemon at addr. An empty addr yields a muted recorder.
// When the daemon is unreachable New returns a muted recorder together with the error,
// so callers may log and carry on.
func New(addr string) (*Recorder, error) {
	client, err := statsd.New(
		statsd.Address(addr),
		statsd.Prefix(prefix),
		statsd.Mute(addr == ""),
		statsd.FlushPeriod(time.Second),
	)
	return &Recorder{client: client}, err
}

// Session starts timing a card session. The returned func records its outcome
// ("ok", "no_card", "unrecognized_card", ...) and must be called once.
func (r *Recorder) Session() func(outcome string) {
	if r == nil || r.client == nil {
		return func(string) {}
	}
	t := r.client.NewTiming()
	return func(outcome string) {
		t.Send("session.duration")
		r.client.Increment("session." + outcome)
	}
}

// BytesRead counts the bytes transferred for one card file.
func (r *Recorder) BytesRead(file string, n int) {
	if r == nil || r.client == nil {
		return
	}
	r.client.Count("bytes."+file, n)
}

// Close flushes pending metrics.
func (r *Recorder) Close() {
	if r == nil || r.client == nil {
		return
	}
	r.client.Close()
}
