package dynamo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/edvin/cronhook/internal/model"
)

func (s *Store) CreateCron(ctx context.Context, job *model.CronJob) error {
	rec, err := newCronRecord(job)
	if err != nil {
		return err
	}
	return s.putNew(ctx, s.table, rec, "cron "+job.ID)
}

func (s *Store) GetCron(ctx context.Context, id string) (*model.CronJob, error) {
	var rec cronRecord
	if err := s.get(ctx, s.table, cronKey(id), cronKey(id), &rec); err != nil {
		return nil, err
	}
	return rec.toModel()
}

func (s *Store) ListCronsByWorkspace(ctx context.Context, workspaceID string) ([]model.CronJob, error) {
	var recs []cronRecord
	err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              &s.table,
		IndexName:              ptr(GSI1),
		KeyConditionExpression: ptr("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     str(workspaceKey(workspaceID)),
			":prefix": str("cron#"),
		},
	}, &recs)
	if err != nil {
		return nil, fmt.Errorf("list crons for workspace %s: %w", workspaceID, err)
	}

	jobs := make([]model.CronJob, 0, len(recs))
	for i := range recs {
		job, err := recs[i].toModel()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (s *Store) UpdateCronDefinition(ctx context.Context, id string, setting model.CronSetting, updatedAt time.Time) error {
	raw, err := json.Marshal(setting)
	if err != nil {
		return fmt.Errorf("marshal setting: %w", err)
	}
	ts, err := attributevalue.Marshal(updatedAt)
	if err != nil {
		return fmt.Errorf("marshal updated_at: %w", err)
	}
	return s.update(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.table,
		Key:              key(cronKey(id), cronKey(id)),
		UpdateExpression: ptr("SET #setting = :setting, #name = :name, Description = :desc, UpdatedAt = :updated"),
		ExpressionAttributeNames: map[string]string{
			"#setting": "Setting",
			"#name":    "Name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":setting": str(string(raw)),
			":name":    str(setting.Name),
			":desc":    str(setting.Description),
			":updated": ts,
		},
	}, "cron "+id)
}

func (s *Store) UpdateCronStatus(ctx context.Context, id, status string, resetFailedCount bool) error {
	expr := "SET CronStatus = :status"
	values := map[string]types.AttributeValue{":status": str(status)}
	if resetFailedCount {
		expr += ", FailedCount = :zero"
		values[":zero"] = num(0)
	}
	return s.update(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &s.table,
		Key:                       key(cronKey(id), cronKey(id)),
		UpdateExpression:          &expr,
		ExpressionAttributeValues: values,
	}, "cron "+id)
}

func (s *Store) IncrementFailedCount(ctx context.Context, id string) error {
	return s.update(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &s.table,
		Key:                       key(cronKey(id), cronKey(id)),
		UpdateExpression:          ptr("ADD FailedCount :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": num(1)},
	}, "cron "+id)
}

func (s *Store) ResetFailedCount(ctx context.Context, id string) error {
	return s.update(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &s.table,
		Key:                       key(cronKey(id), cronKey(id)),
		UpdateExpression:          ptr("SET FailedCount = :zero"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":zero": num(0)},
	}, "cron "+id)
}

func (s *Store) DeleteCron(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.table,
		Key:       key(cronKey(id), cronKey(id)),
	})
	if err != nil {
		return fmt.Errorf("delete cron %s: %w", id, err)
	}
	return nil
}

func num(n int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}
