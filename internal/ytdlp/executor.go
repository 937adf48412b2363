package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"vsocial/resolver-service/internal/utils"
)

const (
	// DefaultTimeout 单策略平台的超时
	DefaultTimeout = 120 * time.Second
	// StrategyTimeout 回退序列中每次尝试的超时
	StrategyTimeout = 90 * time.Second
	// DefaultMaxOutputBytes stdout+stderr 合计上限
	DefaultMaxOutputBytes int64 = 10 * 1024 * 1024

	// 进程被杀后等待输出管道关闭的时间
	waitDelay = 2 * time.Second
)

const (
	ReasonTimeout  = "timeout"
	ReasonOverflow = "output overflow"
)

// Kind 执行结果类型
type Kind string

const (
	KindNone     Kind = "none"
	KindTimeout  Kind = "timeout"
	KindOverflow Kind = "overflow"
	KindTool     Kind = "tool"
	KindLaunch   Kind = "launch"
	KindCanceled Kind = "canceled"
)

// Limits 单次调用的资源限制
type Limits struct {
	Timeout        time.Duration
	MaxOutputBytes int64
}

func (l Limits) withDefaults() Limits {
	if l.Timeout <= 0 {
		l.Timeout = DefaultTimeout
	}
	if l.MaxOutputBytes <= 0 {
		l.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return l
}

// Result 一次子进程调用的结果
type Result struct {
	Success       bool
	Output        string
	Diagnostic    string
	FailureReason string
	Kind          Kind

	cause error
}

// Err 将失败结果映射为哨兵错误, 成功时返回nil
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	switch r.Kind {
	case KindTimeout:
		return utils.ErrTimeout
	case KindOverflow:
		return utils.ErrOutputOverflow
	case KindLaunch:
		return utils.ErrYTDLPNotFound
	case KindCanceled:
		if r.cause != nil {
			return r.cause
		}
		return context.Canceled
	default:
		return utils.MapYTDLPError(r.Diagnostic)
	}
}

func failed(kind Kind, reason, stdout, stderr string, cause error) Result {
	return Result{
		Success:       false,
		Output:        stdout,
		Diagnostic:    stderr,
		FailureReason: reason,
		Kind:          kind,
		cause:         cause,
	}
}

// Runner 子进程执行器
type Runner interface {
	Run(ctx context.Context, args []string, limits Limits) Result
}

// ExecRunner 直接启动 yt-dlp 子进程 (不经过 shell)
type ExecRunner struct {
	binaryPath string
	logger     *zap.Logger
}

// NewExecRunner 创建执行器
func NewExecRunner(binaryPath string, logger *zap.Logger) *ExecRunner {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{
		binaryPath: binaryPath,
		logger:     logger,
	}
}

// Run 执行一次 yt-dlp 调用
func (r *ExecRunner) Run(ctx context.Context, args []string, limits Limits) Result {
	limits = limits.withDefaults()

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, limits.Timeout)
	defer cancelTimeout()
	runCtx, cancelRun := context.WithCancel(timeoutCtx)
	defer cancelRun()

	budget := &outputBudget{remaining: limits.MaxOutputBytes, onExceed: cancelRun}
	stdout := &budgetWriter{budget: budget}
	stderr := &budgetWriter{budget: budget}

	cmd := exec.CommandContext(runCtx, r.binaryPath, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	r.logger.Debug("Executing yt-dlp",
		zap.String("binary", r.binaryPath),
		zap.Strings("args", args),
		zap.Duration("timeout", limits.Timeout))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	out := stdout.String()
	diag := stderr.String()

	var result Result
	switch {
	case budget.Exceeded():
		result = failed(KindOverflow, ReasonOverflow, out, diag, nil)
	case err != nil && ctx.Err() != nil:
		result = failed(KindCanceled, ctx.Err().Error(), out, diag, ctx.Err())
	case err != nil && errors.Is(timeoutCtx.Err(), context.DeadlineExceeded):
		result = failed(KindTimeout, ReasonTimeout, out, diag, nil)
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result = failed(KindTool, failureReason(diag, err), out, diag, err)
		} else {
			result = failed(KindLaunch, err.Error(), out, diag, err)
		}
	case diag != "" && out == "":
		// 只有诊断输出没有标准输出, 即使退出码为0也视为失败
		result = failed(KindTool, strings.TrimSpace(diag), out, diag, nil)
	default:
		result = Result{Success: true, Output: out, Diagnostic: diag, Kind: KindNone}
	}

	if result.Success {
		r.logger.Debug("yt-dlp finished",
			zap.Duration("elapsed", elapsed),
			zap.Int("stdout_bytes", len(out)),
			zap.Int("stderr_bytes", len(diag)))
	} else {
		r.logger.Error("yt-dlp error",
			zap.String("kind", string(result.Kind)),
			zap.String("reason", result.FailureReason),
			zap.Duration("elapsed", elapsed))
	}
	return result
}

func failureReason(diag string, err error) string {
	if trimmed := strings.TrimSpace(diag); trimmed != "" {
		return trimmed
	}
	return err.Error()
}

// outputBudget stdout 与 stderr 共享的输出额度
type outputBudget struct {
	mu        sync.Mutex
	remaining int64
	exceeded  bool
	onExceed  func()
}

func (b *outputBudget) Exceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exceeded
}

// budgetWriter 超出额度后丢弃数据并终止进程
type budgetWriter struct {
	budget *outputBudget
	buf    bytes.Buffer
}

func (w *budgetWriter) Write(p []byte) (int, error) {
	b := w.budget
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.exceeded {
		return len(p), nil
	}
	if int64(len(p)) > b.remaining {
		b.exceeded = true
		b.onExceed()
		return len(p), nil
	}
	b.remaining -= int64(len(p))
	w.buf.Write(p)
	return len(p), nil
}

func (w *budgetWriter) String() string {
	w.budget.mu.Lock()
	defer w.budget.mu.Unlock()
	return w.buf.String()
}
