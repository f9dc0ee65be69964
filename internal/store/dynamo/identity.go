package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return s.putNew(ctx, s.table, newUserRecord(user), "user "+user.ID)
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var rec userRecord
	if err := s.get(ctx, s.table, userKey(id), skMeta, &rec); err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Store) CreateAuthIdentity(ctx context.Context, identity *model.AuthIdentity) error {
	return s.putNew(ctx, s.table, newIdentityRecord(identity), "identity "+identity.Provider)
}

func (s *Store) GetAuthIdentity(ctx context.Context, provider, subject string) (*model.AuthIdentity, error) {
	k := authKey(provider, subject)
	var rec identityRecord
	if err := s.get(ctx, s.table, k, k, &rec); err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

// CreateWorkspace writes the workspace and its owner membership in one
// transaction.
func (s *Store) CreateWorkspace(ctx context.Context, workspace *model.Workspace, owner *model.Membership) error {
	ws, err := attributevalue.MarshalMap(&workspaceRecord{
		PK:          workspaceKey(workspace.ID),
		SK:          skMeta,
		WorkspaceID: workspace.ID,
		Name:        workspace.Name,
		CreatedAt:   workspace.CreatedAt,
		UpdatedAt:   workspace.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}
	m, err := attributevalue.MarshalMap(newMembershipRecord(owner))
	if err != nil {
		return fmt.Errorf("marshal membership: %w", err)
	}

	cond := ptr("attribute_not_exists(PK)")
	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: &s.table, Item: ws, ConditionExpression: cond}},
			{Put: &types.Put{TableName: &s.table, Item: m, ConditionExpression: ptr("attribute_not_exists(SK)")}},
		},
	})
	if err != nil {
		return fmt.Errorf("create workspace %s: %w", workspace.ID, mapError(err, store.ErrAlreadyExists))
	}
	return nil
}

func (s *Store) ListMembershipsByUser(ctx context.Context, userID string) ([]model.Membership, error) {
	return s.listMemberships(ctx, &dynamodb.QueryInput{
		TableName:              &s.table,
		KeyConditionExpression: ptr("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     str(userKey(userID)),
			":prefix": str("workspace#"),
		},
	})
}

func (s *Store) ListMembershipsByWorkspace(ctx context.Context, workspaceID string) ([]model.Membership, error) {
	return s.listMemberships(ctx, &dynamodb.QueryInput{
		TableName:              &s.table,
		IndexName:              ptr(GSI1),
		KeyConditionExpression: ptr("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     str(workspaceKey(workspaceID)),
			":prefix": str("user#"),
		},
	})
}

func (s *Store) listMemberships(ctx context.Context, in *dynamodb.QueryInput) ([]model.Membership, error) {
	var recs []membershipRecord
	if err := s.queryAll(ctx, in, &recs); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	out := make([]model.Membership, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}
