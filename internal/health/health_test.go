package health

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_NoAttemptsIsHealthy(t *testing.T) {
	var tr Tracker
	s := tr.Snapshot()
	assert.Equal(t, StatusHealthy, s.Status)
	assert.Equal(t, 1.0, s.SuccessRate)
}

func TestSnapshot_Buckets(t *testing.T) {
	var tr Tracker
	for i := 0; i < 9; i++ {
		tr.Record(10*time.Millisecond, nil)
	}
	tr.Record(10*time.Millisecond, errors.New("boom"))
	s := tr.Snapshot()
	assert.Equal(t, StatusHealthy, s.Status)
	assert.InDelta(t, 0.9, s.SuccessRate, 1e-9)
	assert.Equal(t, 10*time.Millisecond, s.MeanLatency)

	var slow Tracker
	slow.Record(3*time.Second, nil)
	assert.Equal(t, StatusDegraded, slow.Snapshot().Status)

	var failing Tracker
	failing.Record(time.Millisecond, nil)
	failing.Record(time.Millisecond, errors.New("x"))
	failing.Record(time.Millisecond, errors.New("y"))
	assert.Equal(t, StatusDown, failing.Snapshot().Status)
}

func TestClassify_Boundaries(t *testing.T) {
	assert.Equal(t, StatusHealthy, Classify(0.8, 2000*time.Millisecond))
	assert.Equal(t, StatusDegraded, Classify(0.79, 0))
	assert.Equal(t, StatusDegraded, Classify(0.5, 0))
	assert.Equal(t, StatusDown, Classify(0.49, 0))
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, StatusHealthy, Aggregate(StatusHealthy, StatusHealthy, StatusHealthy))
	assert.Equal(t, StatusDegraded, Aggregate(StatusHealthy, StatusDegraded, StatusHealthy))
	assert.Equal(t, StatusDown, Aggregate(StatusDegraded, StatusDown, StatusHealthy))
	assert.Equal(t, StatusHealthy, Aggregate())
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	var tr Tracker
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Record(time.Millisecond, nil)
			tr.ExternalFailure()
			tr.Dropped(2)
		}()
	}
	wg.Wait()
	s := tr.Snapshot()
	assert.Equal(t, int64(50), s.Attempts)
	assert.Equal(t, int64(50), s.ExternalFailures)
	assert.Equal(t, int64(100), s.Dropped)
}
