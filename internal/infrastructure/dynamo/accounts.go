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

// AccountRepo provides typed DynamoDB operations for the accounts table.
// Email and mobile uniqueness is enforced with guard items in a second table
// (PK: key = "email#<email>" | "mobile#<mobile>") written in the same
// transaction as the account itself.
type AccountRepo struct {
	client    API
	tableName string
	keysTable string
}

func NewAccountRepo(client API, tableName, keysTable string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName, keysTable: keysTable}
}

func emailKey(email string) string   { return "email#" + email }
func mobileKey(mobile string) string { return "mobile#" + mobile }

// Create inserts a new account. Returns ErrConflict when the account ID,
// email or mobile is already taken.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(account_id)"),
			}},
			r.putGuard(emailKey(a.Email), a.AccountID),
			r.putGuard(mobileKey(a.Mobile), a.AccountID),
		},
	})
	if isTxConditionFailed(err) {
		return fmt.Errorf("account already exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrAccountID, accountID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEmail returns the account holding email, including its PIN hash.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.queryGSI(ctx, indexEmail, attrEmail, email)
}

func (r *AccountRepo) GetByMobile(ctx context.Context, mobile string) (*domain.Account, error) {
	return r.queryGSI(ctx, indexMobile, attrMobile, mobile)
}

// SetHasProfile flips the has_profile flag on an existing account.
func (r *AccountRepo) SetHasProfile(ctx context.Context, accountID string) error {
	return r.update(ctx, accountID, map[string]interface{}{attrHasProfile: true})
}

func (r *AccountRepo) UpdatePinHash(ctx context.Context, accountID, pinHash string) error {
	return r.update(ctx, accountID, map[string]interface{}{attrPinHash: pinHash})
}

// UpdateDetails writes next's name, email and mobile over prev. When email or
// mobile change, the guard items move in the same transaction so a taken
// value surfaces as ErrConflict.
func (r *AccountRepo) UpdateDetails(ctx context.Context, prev, next *domain.Account) error {
	updates := map[string]interface{}{}
	if next.Name != prev.Name {
		updates[attrName] = next.Name
	}
	if next.Email != prev.Email {
		updates[attrEmail] = next.Email
	}
	if next.Mobile != prev.Mobile {
		updates[attrMobile] = next.Mobile
	}
	if len(updates) == 0 {
		return nil
	}
	if next.Email == prev.Email && next.Mobile == prev.Mobile {
		return r.update(ctx, prev.AccountID, updates)
	}

	updates[attrUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	items := []types.TransactWriteItem{
		{Update: &types.Update{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey(attrAccountID, prev.AccountID),
			UpdateExpression:          aws.String(ue.Expr),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
			ConditionExpression:       aws.String("attribute_exists(account_id)"),
		}},
	}
	if next.Email != prev.Email {
		items = append(items, r.putGuard(emailKey(next.Email), prev.AccountID), r.deleteGuard(emailKey(prev.Email)))
	}
	if next.Mobile != prev.Mobile {
		items = append(items, r.putGuard(mobileKey(next.Mobile), prev.AccountID), r.deleteGuard(mobileKey(prev.Mobile)))
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if isTxConditionFailed(err) {
		return fmt.Errorf("email or mobile already in use: %w", domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	updates[attrUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrAccountID, accountID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(account_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *AccountRepo) putGuard(key, accountID string) types.TransactWriteItem {
	return types.TransactWriteItem{Put: &types.Put{
		TableName: aws.String(r.keysTable),
		Item: map[string]types.AttributeValue{
			attrKey:       &types.AttributeValueMemberS{Value: key},
			attrAccountID: &types.AttributeValueMemberS{Value: accountID},
		},
		ConditionExpression:      aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": attrKey},
	}}
}

func (r *AccountRepo) deleteGuard(key string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(r.keysTable),
		Key:       strKey(attrKey, key),
	}}
}

func (r *AccountRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.Account, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}
