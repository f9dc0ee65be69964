package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

const maxBatchGetAttempts = 5

func (s *Store) CreateSession(ctx context.Context, session *model.Session) error {
	return s.putNew(ctx, s.table, newSessionRecord(session), "session")
}

// GetSessionContext fetches session, user and membership in one BatchGetItem.
func (s *Store) GetSessionContext(ctx context.Context, token, userID, workspaceID string) (*store.SessionContext, error) {
	keys := []map[string]types.AttributeValue{
		key(sessionKey(token), sessionKey(token)),
		key(userKey(userID), skMeta),
	}
	if workspaceID != "" {
		keys = append(keys, key(userKey(userID), workspaceKey(workspaceID)))
	}

	items, err := s.batchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get session context: %w", err)
	}

	sc := &store.SessionContext{}
	for _, item := range items {
		pk, sk := attrString(item, "PK"), attrString(item, "SK")
		switch {
		case strings.HasPrefix(pk, "session#"):
			var rec sessionRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal session: %w", err)
			}
			sess := rec.toModel()
			sc.Session = &sess
		case sk == skMeta:
			var rec userRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal user: %w", err)
			}
			sc.User = rec.toModel()
		case strings.HasPrefix(sk, "workspace#"):
			var rec membershipRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal membership: %w", err)
			}
			m := rec.toModel()
			sc.Membership = &m
		}
	}
	return sc, nil
}

// batchGet reads keys from the main table, retrying unprocessed keys.
func (s *Store) batchGet(ctx context.Context, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	request := map[string]types.KeysAndAttributes{s.table: {Keys: keys}}

	for attempt := 0; len(request) > 0; attempt++ {
		if attempt == maxBatchGetAttempts {
			return nil, fmt.Errorf("batch get: unprocessed keys after %d attempts", attempt)
		}
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt*50) * time.Millisecond):
			}
		}
		res, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
		if err != nil {
			return nil, fmt.Errorf("batch get: %w", err)
		}
		items = append(items, res.Responses[s.table]...)
		request = res.UnprocessedKeys
	}
	return items, nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]model.Session, error) {
	var recs []sessionRecord
	err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              &s.table,
		IndexName:              ptr(GSI1),
		KeyConditionExpression: ptr("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     str(userKey(userID)),
			":prefix": str("session#"),
		},
	}, &recs)
	if err != nil {
		return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}
	out := make([]model.Session, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.table,
		Key:       key(sessionKey(token), sessionKey(token)),
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func attrString(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
