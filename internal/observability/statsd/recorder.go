package statsd

import (
	"strconv"
	"sync"
	"time"
)

// Recorder is an in-memory Sink that keeps rendered lines. Tests use it to
// assert on emitted metrics.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.add(Line("", name, strconv.FormatInt(value, 10), "c", nil, tags))
}

func (r *Recorder) Gauge(name string, value float64, tags map[string]string) {
	r.add(Line("", name, strconv.FormatFloat(value, 'f', -1, 64), "g", nil, tags))
}

// Timing records the metric with a fixed "<d>" value so lines stay stable.
func (r *Recorder) Timing(name string, _ time.Duration, tags map[string]string) {
	r.add(Line("", name, "<d>", "ms", nil, tags))
}

func (r *Recorder) add(line string) {
	if line == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// Lines returns a copy of the recorded lines in emission order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
