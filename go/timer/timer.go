// timer makes timing operations easier.
package timer

import (
	"time"

	"go.skia.org/flamechart/go/metrics2"
	"go.skia.org/flamechart/go/sklog"
)

// Timer is for timing events. When finished the duration is reported
// via sklog, and to a summary metric if one is attached.
//
// The standard way to use Timer is at the top of the func you
// want to measure:
//
//	defer timer.New("trace import time").Stop()
type Timer struct {
	Begin   time.Time
	Name    string
	summary metrics2.Float64SummaryMetric
}

func New(name string) *Timer {
	return &Timer{
		Begin: time.Now(),
		Name:  name,
	}
}

// NewWithSummary returns a Timer that also records the elapsed seconds in
// the given summary metric.
func NewWithSummary(name string, summary metrics2.Float64SummaryMetric) *Timer {
	t := New(name)
	t.summary = summary
	return t
}

// Stop logs and returns the elapsed time.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.Begin)
	sklog.Infof("%s %v", t.Name, d)
	if t.summary != nil {
		t.summary.Observe(d.Seconds())
	}
	return d
}
