// Package telemetry records the time between scheduler quanta.
//
// The log is append only. It never influences scheduling, and is read once
// when the machine shuts down.
package telemetry

import (
	"fmt"
	"time"

	"github.com/ezrec/ukernel/translate"
)

var f = translate.From

// Log is the quantum duration log of a single boot.
type Log struct {
	Durations []time.Duration // Durations between quantum boundaries.

	start time.Time
	last  time.Time
}

// Start resets the log, marking the boot time.
func (tl *Log) Start(now time.Time) {
	tl.Durations = tl.Durations[:0]
	tl.start = now
	tl.last = now
}

// Mark appends the time since the previous mark (or boot).
func (tl *Log) Mark(now time.Time) {
	tl.Durations = append(tl.Durations, now.Sub(tl.last))
	tl.last = now
}

// Report summarizes the log at shutdown time now.
func (tl *Log) Report(now time.Time) (report Report) {
	report.Count = len(tl.Durations)
	report.Total = now.Sub(tl.start)

	if report.Count == 0 {
		return
	}

	var sum time.Duration
	for _, dur := range tl.Durations {
		sum += dur
	}

	report.First = tl.Durations[0]
	report.Mean = sum / time.Duration(report.Count)

	return
}

// Report is the shutdown summary of a Log.
type Report struct {
	First time.Duration // Duration of the first quantum.
	Mean  time.Duration // Mean time between quantum boundaries.
	Count int           // Number of quantum boundaries.
	Total time.Duration // Wall clock time since boot.
}

// String returns the report as one labelled line per statistic.
func (report Report) String() (text string) {
	ms := func(dur time.Duration) string {
		return fmt.Sprintf("%.3fms", float64(dur)/float64(time.Millisecond))
	}

	text += f("first quantum: %v\n", ms(report.First))
	text += f("mean quantum: %v\n", ms(report.Mean))
	text += f("quanta: %d\n", report.Count)
	text += f("total time: %v\n", ms(report.Total))

	return
}
