package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

func (s *Store) PutExecutionLog(ctx context.Context, l *model.ExecutionLog) error {
	rec, err := newLogRecord(l)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal log %s: %w", l.ID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.logTable,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put log %s for cron %s: %w", l.ID, l.JobID, err)
	}
	return nil
}

// IncrementDailySummary creates the day's counters on first use.
func (s *Store) IncrementDailySummary(ctx context.Context, date string, success, failed int64) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.logTable,
		Key:              key(pkDailySummary, date),
		UpdateExpression: ptr("ADD SuccessCount :s, FailedCount :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": num(success),
			":f": num(failed),
		},
	})
	if err != nil {
		return fmt.Errorf("increment daily summary %s: %w", date, err)
	}
	return nil
}

// logSummaryProjection keeps Content and CronAction out of list pages so a
// page is not cut short by the 1 MB query limit.
var logSummaryProjection = map[string]string{
	"#sk":       "SK",
	"#cron":     "CronId",
	"#log":      "LogId",
	"#started":  "StartedAt",
	"#success":  "Success",
	"#status":   "CronStatus",
	"#duration": "CronDuration",
}

// ListExecutionLogs reads one extra row to learn whether another page
// exists. A query stopped early by DynamoDB (LastEvaluatedKey set) also
// yields a cursor, so no rows are skipped.
func (s *Store) ListExecutionLogs(ctx context.Context, jobID string, limit int, cursor string) (*model.LogPage, error) {
	after, err := store.DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("list logs for cron %s: %w", jobID, err)
	}

	in := &dynamodb.QueryInput{
		TableName:                &s.logTable,
		KeyConditionExpression:   ptr("PK = :pk AND begins_with(SK, :prefix)"),
		ProjectionExpression:     ptr("#sk, #cron, #log, #started, #success, #status, #duration"),
		ExpressionAttributeNames: logSummaryProjection,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     str(cronLogKey(jobID)),
			":prefix": str("log#"),
		},
		ScanIndexForward: ptr(false),
		Limit:            ptr(int32(limit + 1)),
	}
	if after != "" {
		in.ExclusiveStartKey = key(cronLogKey(jobID), logKey(after))
	}

	res, err := s.client.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("list logs for cron %s: %w", jobID, err)
	}
	var recs []logRecord
	if err := attributevalue.UnmarshalListOfMaps(res.Items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal logs for cron %s: %w", jobID, err)
	}

	page := &model.LogPage{Logs: []model.ExecutionLogSummary{}}
	for i := range recs {
		if i == limit {
			break
		}
		l, err := recs[i].toModel()
		if err != nil {
			return nil, err
		}
		page.Logs = append(page.Logs, l.Summary())
	}

	switch {
	case len(recs) > limit:
		page.Cursor = store.EncodeCursor(strings.TrimPrefix(recs[limit-1].SK, "log#"))
	case len(res.LastEvaluatedKey) > 0 && len(recs) > 0:
		page.Cursor = store.EncodeCursor(strings.TrimPrefix(recs[len(recs)-1].SK, "log#"))
	case len(res.LastEvaluatedKey) > 0:
		var lek struct {
			SK string `dynamodbav:"SK"`
		}
		if err := attributevalue.UnmarshalMap(res.LastEvaluatedKey, &lek); err != nil {
			return nil, fmt.Errorf("unmarshal last key for cron %s: %w", jobID, err)
		}
		page.Cursor = store.EncodeCursor(strings.TrimPrefix(lek.SK, "log#"))
	}
	return page, nil
}

func (s *Store) GetExecutionLog(ctx context.Context, jobID, logID string) (*model.ExecutionLog, error) {
	var rec logRecord
	if err := s.get(ctx, s.logTable, cronLogKey(jobID), logKey(logID), &rec); err != nil {
		return nil, err
	}
	return rec.toModel()
}

func (s *Store) ListDailySummaries(ctx context.Context, start, end string) ([]model.DailySummary, error) {
	var recs []summaryRecord
	err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              &s.logTable,
		KeyConditionExpression: ptr("PK = :pk AND SK BETWEEN :start AND :end"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":    str(pkDailySummary),
			":start": str(start),
			":end":   str(end),
		},
	}, &recs)
	if err != nil {
		return nil, fmt.Errorf("list daily summaries %s..%s: %w", start, end, err)
	}

	out := make([]model.DailySummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.DailySummary{
			Date:         r.SK,
			SuccessCount: r.SuccessCount,
			FailedCount:  r.FailedCount,
		})
	}
	return out, nil
}
