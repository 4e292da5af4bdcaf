package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bestworkers-api/internal/domain"
)

// ProfileRepo provides typed DynamoDB operations for the profiles table.
// PK: account_id, which makes the account→profile link 1:1.
type ProfileRepo struct {
	client    API
	tableName string
}

func NewProfileRepo(client API, tableName string) *ProfileRepo {
	return &ProfileRepo{client: client, tableName: tableName}
}

// Create inserts p. Returns ErrConflict if the account already has a profile.
func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(account_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("profile already exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *ProfileRepo) GetByAccount(ctx context.Context, accountID string) (*domain.Profile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrAccountID, accountID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	var p domain.Profile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByService returns profiles whose normalized service name equals
// serviceName, optionally narrowed to a normalized category. Both arguments
// are bound as expression values, never interpreted as patterns.
func (r *ProfileRepo) FindByService(ctx context.Context, serviceName, serviceCategory string) ([]domain.Profile, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexServiceName),
		KeyConditionExpression: aws.String("#n = :n"),
		ExpressionAttributeNames: map[string]string{
			"#n": attrServiceNameKey,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n": &types.AttributeValueMemberS{Value: domain.NormalizeKey(serviceName)},
		},
	}
	if serviceCategory != "" {
		input.FilterExpression = aws.String("#c = :c")
		input.ExpressionAttributeNames["#c"] = attrServiceCategoryKey
		input.ExpressionAttributeValues[":c"] = &types.AttributeValueMemberS{Value: domain.NormalizeKey(serviceCategory)}
	}

	profiles := []domain.Profile{}
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Profile
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		profiles = append(profiles, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return profiles, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Update applies a partial update to the account's profile and returns the
// stored result. A nil value removes the attribute.
func (r *ProfileRepo) Update(ctx context.Context, accountID string, updates map[string]interface{}) (*domain.Profile, error) {
	updates[attrUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrAccountID, accountID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(account_id)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var p domain.Profile
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
