package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rdzcn/weight-tracker/internal/domain"
)

// MagicLinkRepo manages single-use login tokens. PK: token.
type MagicLinkRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMagicLinkRepo(client *dynamodb.Client, tableName string) *MagicLinkRepo {
	return &MagicLinkRepo{client: client, tableName: tableName}
}

func (r *MagicLinkRepo) Put(ctx context.Context, t *domain.MagicLinkToken) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal magic link token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MagicLinkRepo) Get(ctx context.Context, token string) (*domain.MagicLinkToken, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("magic link token not found: %w", domain.ErrNotFound)
	}
	var t domain.MagicLinkToken
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Consume flips the consumed flag with a conditional update so that two
// racing redemptions of the same token can never both succeed: the losing
// request fails the condition and gets ErrInvalidToken.
func (r *MagicLinkRepo) Consume(ctx context.Context, token string) error {
	_, err := r.client.UpdateItem(ctx, consumeInput(r.tableName, token))
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("token already consumed or unknown: %w", domain.ErrInvalidToken)
	}
	return err
}

// consumeInput builds the conditional update. Both "token" and "consumed"
// are DynamoDB reserved keywords and must be referenced through
// ExpressionAttributeNames.
func consumeInput(tableName, token string) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:           aws.String(tableName),
		Key:                 strKey("token", token),
		UpdateExpression:    aws.String("SET #c = :t"),
		ConditionExpression: aws.String("attribute_exists(#tok) AND #c = :f"),
		ExpressionAttributeNames: map[string]string{
			"#tok": "token",
			"#c":   "consumed",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": boolAttr(true),
			":f": boolAttr(false),
		},
	}
}
