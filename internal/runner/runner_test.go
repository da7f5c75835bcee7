package runner

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagePassesErrorThrough(t *testing.T) {
	r := New("run-1")

	require.NoError(t, r.Stage("ok", func() error { return nil }))

	boom := errors.New("boom")
	assert.Equal(t, boom, r.Stage("broken", func() error { return boom }))
	assert.Equal(t, 1, r.Errors())
}

func TestStageRecordsDuration(t *testing.T) {
	r := New("run-1")
	_ = r.Stage("sleepy", func() error {
		time.Sleep(5 * time.Millisecond)
		return nil
	})

	require.Len(t, r.stages, 1)
	assert.Equal(t, "sleepy", r.stages[0].Name)
	assert.GreaterOrEqual(t, r.stages[0].Duration, 5*time.Millisecond)
}

func TestObserveBatch(t *testing.T) {
	r := New("run-1")
	for _, d := range []time.Duration{time.Millisecond, 2 * time.Millisecond, 100 * time.Millisecond} {
		r.ObserveBatch(d)
	}

	assert.EqualValues(t, 3, r.hist.TotalCount())
	assert.GreaterOrEqual(t, r.hist.ValueAtQuantile(99), int64(90*time.Millisecond))
}
