package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceForecast/internal/logger"
)

func TestScheduler_RunNow(t *testing.T) {
	var calls atomic.Int32
	var buf bytes.Buffer
	s := NewScheduler(context.Background(), func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("no data")
	}, logger.NewWithWriter(&buf, zerolog.InfoLevel))

	s.RunNow()
	s.RunNow()
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, 2, s.Runs())
	assert.Contains(t, buf.String(), "forecast task failed")
	assert.Contains(t, buf.String(), "no data")
}

func TestScheduler_SkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	s := NewScheduler(ctx, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	s.RunNow()
	assert.Zero(t, calls.Load())
	assert.Equal(t, 1, s.Runs())
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(context.Background(), func(ctx context.Context) error { return nil }, nil)
	assert.Error(t, s.Register("not a spec"))
	require.NoError(t, s.Register("0 0 6 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestScheduler_FiresOnTick(t *testing.T) {
	done := make(chan struct{}, 1)
	s := NewScheduler(context.Background(), func(ctx context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	}, nil)
	require.NoError(t, s.Register("* * * * * *"))
	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestScheduler_StopWaitsForTriggeredRun(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool
	s := NewScheduler(context.Background(), func(ctx context.Context) error {
		<-release
		finished.Store(true)
		return nil
	}, nil)
	s.Start()

	s.Trigger()
	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned before the triggered run finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("stop did not return")
	}
	assert.True(t, finished.Load())
	assert.Equal(t, 1, s.Runs())
}
