// Package executor runs one tick of a cron job: it performs the HTTP
// callback, updates the failure counter and records the outcome.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/cronhook/internal/metrics"
	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

const (
	// RequestTimeout bounds every HTTP callback.
	RequestTimeout = 5 * time.Second
	// MaxResponseBody is the number of characters of the response body kept in a log.
	MaxResponseBody = 10000
	// LogRetention is how long execution logs are kept.
	LogRetention = 48 * time.Hour

	// StatusTimeout labels a callback that did not finish within RequestTimeout.
	StatusTimeout = "Timeout"
)

// ErrJobNotFound is returned when the triggered job no longer exists.
var ErrJobNotFound = errors.New("cron job not found")

// Ack is the fixed reply to the trigger.
type Ack struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// OK is returned for every handled tick.
var OK = Ack{StatusCode: http.StatusOK, Body: "ok"}

// Disabler disables a job. Implemented by core.CronService.
type Disabler interface {
	Disable(ctx context.Context, job *model.CronJob, reason string) error
}

// Archiver stores a full copy of an execution log outside the primary store.
type Archiver interface {
	Archive(ctx context.Context, log *model.ExecutionLog) error
}

type Runner struct {
	crons    store.CronStore
	logs     store.LogStore
	disabler Disabler
	archiver Archiver
	metrics  *metrics.RunnerMetrics
	client   *http.Client
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

func WithArchiver(a Archiver) Option {
	return func(r *Runner) { r.archiver = a }
}

func WithMetrics(m *metrics.RunnerMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) { r.client = c }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(crons store.CronStore, logs store.LogStore, disabler Disabler, opts ...Option) *Runner {
	r := &Runner{
		crons:    crons,
		logs:     logs,
		disabler: disabler,
		client:   &http.Client{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one HTTP callback.
type Result struct {
	Success  bool
	Status   string
	Body     string
	Duration time.Duration
}

// Execute runs one tick of jobID.
func (r *Runner) Execute(ctx context.Context, jobID string) (Ack, error) {
	logger := zerolog.Ctx(ctx).With().Str("cron_id", jobID).Logger()
	ctx = logger.WithContext(ctx)

	job, err := r.crons.GetCron(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Ack{}, fmt.Errorf("execute cron %s: %w", jobID, ErrJobNotFound)
		}
		return Ack{}, fmt.Errorf("load cron %s: %w", jobID, err)
	}

	if job.FailedCount >= model.MaxConsecutiveFailures {
		if err := r.disabler.Disable(ctx, job, model.CronStatusTooManyFail); err != nil {
			return Ack{}, fmt.Errorf("disable cron %s: %w", jobID, err)
		}
		r.metrics.ObserveAutoDisabled()
		logger.Warn().Int("failed_count", job.FailedCount).Msg("cron disabled after too many failures")
		return OK, nil
	}

	startedAt := r.now().UTC()
	res := r.call(ctx, job.Setting.Action)
	r.metrics.ObserveExecution(res.Success, res.Duration)

	switch {
	case !res.Success:
		if err := r.crons.IncrementFailedCount(ctx, job.ID); err != nil {
			return Ack{}, fmt.Errorf("increment failed count for cron %s: %w", jobID, err)
		}
	case job.FailedCount > 0:
		if err := r.crons.ResetFailedCount(ctx, job.ID); err != nil {
			return Ack{}, fmt.Errorf("reset failed count for cron %s: %w", jobID, err)
		}
	}

	entry := &model.ExecutionLog{
		JobID:        job.ID,
		ID:           store.NewLogID(startedAt),
		WorkspaceID:  job.WorkspaceID,
		StartedAt:    startedAt,
		Success:      res.Success,
		Status:       res.Status,
		DurationMs:   res.Duration.Milliseconds(),
		ResponseBody: res.Body,
		Action:       job.Setting.Action,
		ExpireAt:     startedAt.Add(LogRetention),
	}

	var success, failed int64 = 1, 0
	if !res.Success {
		success, failed = 0, 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.logs.PutExecutionLog(gctx, entry)
	})
	g.Go(func() error {
		return r.logs.IncrementDailySummary(gctx, startedAt.Format(model.DateLayout), success, failed)
	})
	if err := g.Wait(); err != nil {
		return Ack{}, fmt.Errorf("record execution of cron %s: %w", jobID, err)
	}

	if r.archiver != nil {
		if err := r.archiver.Archive(ctx, entry); err != nil {
			logger.Error().Err(err).Str("log_id", entry.ID).Msg("archive execution log")
		}
	}

	logger.Info().
		Bool("success", res.Success).
		Str("status", res.Status).
		Int64("duration_ms", entry.DurationMs).
		Msg("cron executed")
	return OK, nil
}

// call performs the callback described by action. It never returns an
// error; failures are reported in the Result.
func (r *Runner) call(ctx context.Context, action model.CronAction) Result {
	start := r.now()
	res := r.do(ctx, action)
	res.Duration = r.now().Sub(start)
	return res
}

func (r *Runner) do(ctx context.Context, action model.CronAction) Result {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	var body io.Reader
	if action.Body != "" {
		body = strings.NewReader(action.Body)
	}
	req, err := http.NewRequestWithContext(ctx, action.Method, action.URL, body)
	if err != nil {
		return Result{Body: err.Error()}
	}
	for k, v := range action.Headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Result{Status: StatusTimeout}
		}
		return Result{Body: err.Error()}
	}
	// Close without draining: the rest of a large or streaming body is not
	// read once the excerpt is captured.
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBody*utf8.UTFMax))
	if err != nil && isTimeout(err) {
		return Result{Status: StatusTimeout}
	}

	return Result{
		Success: resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:  strconv.Itoa(resp.StatusCode),
		Body:    truncate(string(raw), MaxResponseBody),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
