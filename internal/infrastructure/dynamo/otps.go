package dynamo

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bestworkers-api/internal/domain"
)

// OTPRepo stores one pending code per email.
// PK: email. expires_at is the table's TTL attribute; DynamoDB removes
// expired items lazily, so Find also checks it.
type OTPRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewOTPRepo(client API, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName, now: time.Now}
}

// Put writes o, replacing whatever record the email had before.
func (r *OTPRepo) Put(ctx context.Context, o *domain.OTP) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Find returns the live record for email when its code equals code.
func (r *OTPRepo) Find(ctx context.Context, email, code string) (*domain.OTP, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var o domain.OTP
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(o.Code), []byte(code)) != 1 || o.Expired(r.now()) {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return &o, nil
}

// Delete removes o only if it is still the current record for its email.
func (r *OTPRepo) Delete(ctx context.Context, o *domain.OTP) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrEmail, o.Email),
		ConditionExpression:       aws.String("#c = :c"),
		ExpressionAttributeNames:  map[string]string{"#c": attrCode},
		ExpressionAttributeValues: map[string]types.AttributeValue{":c": &types.AttributeValueMemberS{Value: o.Code}},
	})
	if isConditionFailed(err) {
		return nil
	}
	return err
}

func (r *OTPRepo) DeleteAll(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrEmail, email),
	})
	return err
}
