// Package retry 为外部调用（主要是 LLM）提供显式的重试策略和结果类型。
//
// 调用方拿到的永远是一个 Result，成功、瞬时错误重试耗尽、致命错误三种结局
// 都通过 Outcome 区分，不会出现“静默返回空值”的情况。
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Outcome 一次带重试调用的最终结局
type Outcome int

const (
	// OutcomeSuccess 调用成功
	OutcomeSuccess Outcome = iota
	// OutcomeTransientExhausted 一直遇到瞬时错误，次数用尽
	OutcomeTransientExhausted
	// OutcomeFatal 遇到不可重试的错误，或上下文被取消
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransientExhausted:
		return "transient_exhausted"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Class 错误分类
type Class int

const (
	// ClassFatal 不重试
	ClassFatal Class = iota
	// ClassTransient 限流、服务端错误、网络抖动，可以重试
	ClassTransient
)

// Classifier 把错误归类
type Classifier func(err error) Class

// Policy 重试参数
type Policy struct {
	MaxAttempts int           // 总尝试次数（含第一次）
	BaseDelay   time.Duration // 第一次重试前的等待
	Multiplier  float64       // 每次等待的放大倍数
	MaxDelay    time.Duration // 单次等待上限，0 表示不设上限
}

// DefaultPolicy 1s 起步、翻倍、最多 5 次
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Multiplier:  2,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = d.Multiplier
	}
	return p
}

// newBackOff 构造无抖动、无总时长限制的指数退避
func (p Policy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	} else {
		b.MaxInterval = time.Duration(math.MaxInt64)
	}
	b.Reset()
	return b
}

// Delays 返回按策略在各次失败后应等待的时长，共 MaxAttempts-1 个
func (p Policy) Delays() []time.Duration {
	p = p.normalized()
	b := p.newBackOff()
	out := make([]time.Duration, 0, p.MaxAttempts-1)
	for i := 1; i < p.MaxAttempts; i++ {
		out = append(out, b.NextBackOff())
	}
	return out
}

// Result 带重试调用的结果
type Result[T any] struct {
	Value    T
	Outcome  Outcome
	Attempts int
	Err      error // 最后一次错误，成功时为 nil
}

// OK 是否拿到了结果
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// SleepFunc 可替换的等待函数，测试中用来记录等待时长
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retrier 按策略执行重试
type Retrier struct {
	policy   Policy
	classify Classifier
	sleep    SleepFunc
	logger   zerolog.Logger
}

// Option Retrier 选项
type Option func(*Retrier)

// WithSleep 替换等待函数
func WithSleep(fn SleepFunc) Option {
	return func(r *Retrier) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// WithLogger 设置日志器
func WithLogger(l zerolog.Logger) Option {
	return func(r *Retrier) {
		r.logger = l
	}
}

// New 创建 Retrier；classify 为 nil 时所有错误都视为致命
func New(policy Policy, classify Classifier, opts ...Option) *Retrier {
	if classify == nil {
		classify = func(error) Class { return ClassFatal }
	}
	r := &Retrier{
		policy:   policy.normalized(),
		classify: classify,
		sleep:    sleepCtx,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy 返回生效中的策略
func (r *Retrier) Policy() Policy {
	return r.policy
}

// Do 执行 op，瞬时错误按指数退避重试。
// 各次尝试严格串行，不会并发调用 op。
func Do[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (T, error)) Result[T] {
	var zero T
	b := r.policy.newBackOff()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result[T]{Value: zero, Outcome: OutcomeFatal, Attempts: attempt - 1, Err: err}
		}

		v, err := op(ctx)
		if err == nil {
			return Result[T]{Value: v, Outcome: OutcomeSuccess, Attempts: attempt}
		}

		if r.classify(err) != ClassTransient {
			r.logger.Warn().Err(err).Int("attempt", attempt).Msg("遇到不可重试错误")
			return Result[T]{Value: zero, Outcome: OutcomeFatal, Attempts: attempt, Err: err}
		}

		if attempt >= r.policy.MaxAttempts {
			r.logger.Warn().Err(err).Int("attempts", attempt).Msg("重试次数已用尽")
			return Result[T]{Value: zero, Outcome: OutcomeTransientExhausted, Attempts: attempt, Err: err}
		}

		delay := b.NextBackOff()
		r.logger.Info().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("瞬时错误，等待后重试")
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return Result[T]{Value: zero, Outcome: OutcomeFatal, Attempts: attempt, Err: fmt.Errorf("等待重试时上下文结束: %w", sleepErr)}
		}
	}
}
