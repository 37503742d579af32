package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/faceoff/internal/ingest"
)

type blockingRunner struct {
	calls   atomic.Int32
	release chan struct{}
	seasons []int
	err     error
}

func (r *blockingRunner) Run(_ context.Context, seasons []int) (ingest.Summary, error) {
	r.calls.Add(1)
	r.seasons = seasons
	if r.release != nil {
		<-r.release
	}
	return ingest.Summary{Seasons: seasons, GamesLedgered: 3}, r.err
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(&blockingRunner{}, Config{Spec: "every day"}, nil)
	assert.Error(t, err)
}

func TestTriggerRunsConfiguredSeasons(t *testing.T) {
	runner := &blockingRunner{}
	s, err := New(runner, Config{Spec: "0 6 * * *", Seasons: []int{20252026}}, nil)
	require.NoError(t, err)

	sum, err := s.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.GamesLedgered)
	assert.Equal(t, []int{20252026}, runner.seasons)

	st := s.Status()
	assert.False(t, st.Running)
	require.NotNil(t, st.Last)
	assert.Equal(t, 3, st.Last.GamesLedgered)
}

func TestTriggerRejectsOverlappingRuns(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	s, err := New(runner, Config{Spec: "0 6 * * *", Seasons: []int{20252026}}, nil)
	require.NoError(t, err)

	require.NoError(t, s.TriggerAsync(context.Background()))
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Status().Running)

	_, err = s.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.TriggerAsync(context.Background()), ErrBusy)

	close(runner.release)
	s.Stop()
	assert.False(t, s.Status().Running)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestStatusRecordsFailures(t *testing.T) {
	runner := &blockingRunner{err: errors.New("ledger is read-only")}
	s, err := New(runner, Config{Spec: "*/5 * * * *"}, nil)
	require.NoError(t, err)

	_, err = s.Trigger(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "ledger is read-only", s.Status().LastError)
}

func TestStartSchedulesNextRun(t *testing.T) {
	s, err := New(&blockingRunner{}, Config{Spec: "0 6 * * *"}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	st := s.Status()
	require.NotNil(t, st.Next)
	assert.True(t, st.Next.After(time.Now()))
}

func TestEmptySpecDisablesSchedule(t *testing.T) {
	runner := &blockingRunner{}
	s, err := New(runner, Config{Seasons: []int{20252026}}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	assert.Nil(t, s.Status().Next)

	_, err = s.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), runner.calls.Load())
}
