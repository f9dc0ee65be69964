package core

import (
	"context"
	"errors"
	"time"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

const (
	DefaultLogLimit = 20
	MaxLogLimit     = 100

	// StatisticsWindowDays is the length of the default statistics range.
	StatisticsWindowDays = 31
)

// LogService reads execution logs and daily summaries.
type LogService struct {
	store store.LogStore
}

func NewLogService(s store.LogStore) *LogService {
	return &LogService{store: s}
}

// ListLogs returns one page of a job's logs, newest first.
func (s *LogService) ListLogs(ctx context.Context, jobID string, limit int, cursor string) (*model.LogPage, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}
	page, err := s.store.ListExecutionLogs(ctx, jobID, limit, cursor)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			return nil, ValidationError("invalid cursor")
		}
		return nil, InfrastructureError("failed to list logs", err)
	}
	return page, nil
}

func (s *LogService) GetLog(ctx context.Context, jobID, logID string) (*model.ExecutionLog, error) {
	l, err := s.store.GetExecutionLog(ctx, jobID, logID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("log not found")
		}
		return nil, InfrastructureError("failed to get log", err)
	}
	return l, nil
}

// Statistics returns the daily summaries between start and end inclusive.
func (s *LogService) Statistics(ctx context.Context, start, end string) ([]model.DailySummary, error) {
	from, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return nil, ValidationError("invalid start date")
	}
	to, err := time.Parse(model.DateLayout, end)
	if err != nil {
		return nil, ValidationError("invalid end date")
	}
	if from.After(to) {
		return nil, ValidationError("start date must not be after end date")
	}

	summaries, err := s.store.ListDailySummaries(ctx, start, end)
	if err != nil {
		return nil, InfrastructureError("failed to list statistics", err)
	}
	if summaries == nil {
		summaries = []model.DailySummary{}
	}
	return summaries, nil
}

// DefaultStatisticsRange returns the 31 days ending yesterday, in UTC.
func DefaultStatisticsRange(now time.Time) (start, end string) {
	yesterday := now.UTC().AddDate(0, 0, -1)
	first := yesterday.AddDate(0, 0, -(StatisticsWindowDays - 1))
	return first.Format(model.DateLayout), yesterday.Format(model.DateLayout)
}
