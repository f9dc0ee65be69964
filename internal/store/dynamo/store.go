// Package dynamo implements store.Store on DynamoDB using a single table
// for jobs, sessions and identities and a second table for execution logs.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/edvin/cronhook/internal/store"
)

// GSI1 is the name of the secondary index on GSI1PK and GSI1SK.
const GSI1 = "GSI1"

// API is the subset of the DynamoDB client used by the store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type Store struct {
	client   API
	table    string
	logTable string
}

var _ store.Store = (*Store)(nil)

func New(client API, table, logTable string) *Store {
	return &Store{client: client, table: table, logTable: logTable}
}

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func str(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

// mapError translates conditional write failures into store sentinels.
// onCondition is returned when a condition expression did not hold.
func mapError(err, onCondition error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return onCondition
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, r := range tce.CancellationReasons {
			if r.Code != nil && *r.Code == "ConditionalCheckFailed" {
				return onCondition
			}
		}
	}
	return err
}

// putNew writes item only if no item with the same PK exists.
func (s *Store) putNew(ctx context.Context, table string, item any, what string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", what, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &table,
		Item:                av,
		ConditionExpression: ptr("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", what, mapError(err, store.ErrAlreadyExists))
	}
	return nil
}

// get loads the item at pk/sk into out. It returns store.ErrNotFound when
// the item does not exist.
func (s *Store) get(ctx context.Context, table, pk, sk string, out any) error {
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &table,
		Key:       key(pk, sk),
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", pk, err)
	}
	if len(res.Item) == 0 {
		return fmt.Errorf("get %s: %w", pk, store.ErrNotFound)
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", pk, err)
	}
	return nil
}

// queryAll runs in to completion and unmarshals every item into out,
// which must be a pointer to a slice of records.
func (s *Store) queryAll(ctx context.Context, in *dynamodb.QueryInput, out any) error {
	var items []map[string]types.AttributeValue
	p := dynamodb.NewQueryPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		items = append(items, page.Items...)
	}
	return attributevalue.UnmarshalListOfMaps(items, out)
}

// update applies an update expression to an existing item.
func (s *Store) update(ctx context.Context, in *dynamodb.UpdateItemInput, what string) error {
	in.ConditionExpression = ptr("attribute_exists(PK)")
	if _, err := s.client.UpdateItem(ctx, in); err != nil {
		return fmt.Errorf("update %s: %w", what, mapError(err, store.ErrNotFound))
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
