package ytdlp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vsocial/resolver-service/internal/utils"
)

// State 回退序列状态
type State int

const (
	StatePending State = iota
	StateAttempting
	StateSucceeded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Outcome 单次尝试的结果分类
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeBotDetected
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeBotDetected:
		return "bot_detected"
	default:
		return "failure"
	}
}

// ClassifyResult 对执行结果分类
func ClassifyResult(r Result) Outcome {
	switch {
	case r.Success:
		return OutcomeSuccess
	case utils.IsBotChallenge(r.Diagnostic) || utils.IsBotChallenge(r.FailureReason):
		return OutcomeBotDetected
	default:
		return OutcomeFailure
	}
}

// Step 状态转移后的位置
type Step struct {
	State State
	Index int
}

// Start Pending 状态下开始序列, 没有策略时直接耗尽
func Start(n int) Step {
	if n <= 0 {
		return Step{State: StateExhausted}
	}
	return Step{State: StateAttempting, Index: 0}
}

// Next 状态转移函数: 成功即终止, 失败且还有策略则前进, 否则耗尽
func Next(i, n int, outcome Outcome) Step {
	if outcome == OutcomeSuccess {
		return Step{State: StateSucceeded, Index: i}
	}
	if i+1 < n {
		return Step{State: StateAttempting, Index: i + 1}
	}
	return Step{State: StateExhausted, Index: i}
}

// Sequencer 按顺序尝试策略直到成功
type Sequencer struct {
	runner Runner
	limits Limits
	logger *zap.Logger
}

// NewSequencer 创建回退序列执行器
func NewSequencer(runner Runner, limits Limits, logger *zap.Logger) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		runner: runner,
		limits: limits,
		logger: logger,
	}
}

// Run 依次执行策略, 返回第一个成功结果.
// 全部失败时返回 upstream 类别的 ExtractionError.
func (s *Sequencer) Run(ctx context.Context, strategies []Strategy, args []string) (Result, error) {
	n := len(strategies)
	if n == 0 {
		return Result{}, utils.Internal(nil, "no strategies configured")
	}

	var last Result
	step := Step{State: StatePending}
	s.logger.Debug("Starting strategy sequence",
		zap.Stringer("state", step.State),
		zap.Int("total", n))

	for step = Start(n); step.State == StateAttempting; {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		strategy := strategies[step.Index]
		invocation := make([]string, 0, len(strategy.Args)+len(args))
		invocation = append(invocation, strategy.Args...)
		invocation = append(invocation, args...)

		s.logger.Info("Trying strategy",
			zap.String("strategy", strategy.Name),
			zap.Int("attempt", step.Index+1),
			zap.Int("total", n))

		last = s.runner.Run(ctx, invocation, s.limits)
		outcome := ClassifyResult(last)
		s.logAttempt(strategy, outcome, last)

		step = Next(step.Index, n, outcome)
	}

	if step.State == StateSucceeded {
		return last, nil
	}

	if last.Kind == KindCanceled {
		return last, last.Err()
	}

	cause := fmt.Errorf("%w: %w", utils.ErrStrategiesExhausted, last.Err())
	return last, utils.Upstream(cause, "all %d strategies exhausted: %s", n, last.FailureReason)
}

func (s *Sequencer) logAttempt(strategy Strategy, outcome Outcome, result Result) {
	fields := []zap.Field{
		zap.String("strategy", strategy.Name),
		zap.String("outcome", outcome.String()),
	}
	switch outcome {
	case OutcomeSuccess:
		s.logger.Info("Strategy succeeded", fields...)
	case OutcomeBotDetected:
		s.logger.Warn("Bot detection challenge", fields...)
	default:
		s.logger.Warn("Strategy failed", append(fields, zap.String("reason", result.FailureReason))...)
	}
}
