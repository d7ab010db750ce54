package health

import (
	"sync/atomic"
	"time"
)

// #region status

// Status is advisory telemetry; generation proceeds regardless of it.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Thresholds for bucketing a tracker into a Status.
const (
	HealthySuccessRate = 0.8
	DownSuccessRate    = 0.5
	MaxHealthyLatency  = 2000 * time.Millisecond
)

// #endregion status

// #region tracker

// Tracker holds running counters since process start. Updates are atomic
// but not mutually consistent; snapshots are approximate.
type Tracker struct {
	attempts         atomic.Int64
	successes        atomic.Int64
	errors           atomic.Int64
	latencyNanos     atomic.Int64
	externalFailures atomic.Int64
	dropped          atomic.Int64
}

// Record counts one attempt with its latency and outcome.
func (t *Tracker) Record(d time.Duration, err error) {
	t.attempts.Add(1)
	t.latencyNanos.Add(int64(d))
	if err != nil {
		t.errors.Add(1)
		return
	}
	t.successes.Add(1)
}

// ExternalFailure counts one failed external backend request.
func (t *Tracker) ExternalFailure() {
	t.externalFailures.Add(1)
}

// Dropped counts candidates discarded for unfillable templates.
func (t *Tracker) Dropped(n int) {
	t.dropped.Add(int64(n))
}

// #endregion tracker

// #region snapshot

// Snapshot is a point-in-time copy of a tracker.
type Snapshot struct {
	Status           Status        `json:"status"`
	Attempts         int64         `json:"attempts"`
	Successes        int64         `json:"successes"`
	Errors           int64         `json:"errors"`
	SuccessRate      float64       `json:"success_rate"`
	MeanLatency      time.Duration `json:"mean_latency_ns"`
	ExternalFailures int64         `json:"external_failures"`
	Dropped          int64         `json:"dropped_candidates"`
}

// Snapshot reads the counters and buckets them into a Status.
// With no attempts yet the tracker reports healthy.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Attempts:         t.attempts.Load(),
		Successes:        t.successes.Load(),
		Errors:           t.errors.Load(),
		ExternalFailures: t.externalFailures.Load(),
		Dropped:          t.dropped.Load(),
		SuccessRate:      1,
	}
	if s.Attempts > 0 {
		s.SuccessRate = float64(s.Successes) / float64(s.Attempts)
		s.MeanLatency = time.Duration(t.latencyNanos.Load() / s.Attempts)
	}
	s.Status = Classify(s.SuccessRate, s.MeanLatency)
	return s
}

// Classify buckets a success rate and mean latency.
func Classify(successRate float64, meanLatency time.Duration) Status {
	switch {
	case successRate < DownSuccessRate:
		return StatusDown
	case successRate >= HealthySuccessRate && meanLatency <= MaxHealthyLatency:
		return StatusHealthy
	default:
		return StatusDegraded
	}
}

// Aggregate is healthy only if all are healthy, down if any is down, else degraded.
func Aggregate(statuses ...Status) Status {
	out := StatusHealthy
	for _, s := range statuses {
		switch s {
		case StatusDown:
			return StatusDown
		case StatusHealthy:
		default:
			out = StatusDegraded
		}
	}
	return out
}

// #endregion snapshot
