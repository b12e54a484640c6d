package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("rate limited")
	errFatal     = errors.New("bad request")
)

func classify(err error) Class {
	if errors.Is(err, errTransient) {
		return ClassTransient
	}
	return ClassFatal
}

// recordSleep 记录等待时长但不真正等待
func recordSleep(delays *[]time.Duration) SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestAlwaysTransientExhaustsAfterFiveAttempts(t *testing.T) {
	var delays []time.Duration
	r := New(DefaultPolicy(), classify, WithSleep(recordSleep(&delays)))

	calls := 0
	res := Do(context.Background(), r, func(context.Context) (string, error) {
		calls++
		return "", errTransient
	})

	assert.Equal(t, OutcomeTransientExhausted, res.Outcome)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, 5, calls, "应恰好调用 5 次")
	assert.ErrorIs(t, res.Err, errTransient)
	assert.False(t, res.OK())
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, delays)
}

func TestFatalStopsImmediately(t *testing.T) {
	var delays []time.Duration
	r := New(DefaultPolicy(), classify, WithSleep(recordSleep(&delays)))

	res := Do(context.Background(), r, func(context.Context) (int, error) {
		return 0, errFatal
	})

	assert.Equal(t, OutcomeFatal, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, delays, "致命错误不应等待")
}

func TestSucceedsAfterTransientFailures(t *testing.T) {
	var delays []time.Duration
	r := New(DefaultPolicy(), classify, WithSleep(recordSleep(&delays)))

	calls := 0
	res := Do(context.Background(), r, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})

	require.True(t, res.OK())
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, 3, res.Attempts)
	assert.NoError(t, res.Err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestSucceedsOnFinalAttempt(t *testing.T) {
	var delays []time.Duration
	r := New(DefaultPolicy(), classify, WithSleep(recordSleep(&delays)))

	calls := 0
	res := Do(context.Background(), r, func(context.Context) (string, error) {
		calls++
		if calls <= 4 {
			return "", errTransient
		}
		return "fifth", nil
	})

	require.True(t, res.OK(), "第 5 次成功应视为成功")
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "fifth", res.Value)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, 5, calls)
	assert.NoError(t, res.Err)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, delays)
}

func TestMaxDelayCapsBackoff(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Second, Multiplier: 2, MaxDelay: 3 * time.Second}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}, p.Delays())
}

func TestPolicyNormalizesZeroValues(t *testing.T) {
	r := New(Policy{}, nil)
	assert.Equal(t, DefaultPolicy(), r.Policy())
}

func TestNilClassifierTreatsEverythingAsFatal(t *testing.T) {
	r := New(DefaultPolicy(), nil, WithSleep(func(context.Context, time.Duration) error { return nil }))
	res := Do(context.Background(), r, func(context.Context) (int, error) { return 0, errTransient })
	assert.Equal(t, OutcomeFatal, res.Outcome)
}

func TestCancelledContextDuringSleepIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(DefaultPolicy(), classify, WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	res := Do(ctx, r, func(context.Context) (int, error) { return 0, errTransient })
	assert.Equal(t, OutcomeFatal, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestAlreadyCancelledContextDoesNotCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	res := Do(ctx, New(DefaultPolicy(), classify), func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	assert.False(t, called)
	assert.Equal(t, OutcomeFatal, res.Outcome)
	assert.Equal(t, 0, res.Attempts)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "transient_exhausted", OutcomeTransientExhausted.String())
	assert.Equal(t, "fatal", OutcomeFatal.String())
}
