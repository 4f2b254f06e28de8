package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rdzcn/weight-tracker/internal/domain"
)

// WeightRepo provides typed DynamoDB operations for the weights table.
// Every read and every delete is scoped to an owning user.
type WeightRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewWeightRepo(client *dynamodb.Client, tableName string) *WeightRepo {
	return &WeightRepo{client: client, tableName: tableName}
}

func (r *WeightRepo) Put(ctx context.Context, e *domain.WeightEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal weight entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *WeightRepo) Get(ctx context.Context, entryID string) (*domain.WeightEntry, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("entry_id", entryID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("weight entry not found: %w", domain.ErrNotFound)
	}
	var e domain.WeightEntry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByUser returns the user's entries ascending by timestamp via the
// user_id-ts-index GSI. start/end are inclusive bounds; nil means
// unbounded on that side.
func (r *WeightRepo) ListByUser(ctx context.Context, userID string, start, end *time.Time) ([]domain.WeightEntry, error) {
	input := listByUserInput(r.tableName, userID, start, end)

	entries := make([]domain.WeightEntry, 0)
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.WeightEntry
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		entries = append(entries, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return entries, nil
}

// listByUserInput builds the GSI range query. Bounds are inclusive on
// both sides; a nil bound leaves that side open.
func listByUserInput(tableName, userID string, start, end *time.Time) *dynamodb.QueryInput {
	cond := "user_id = :uid"
	values := map[string]types.AttributeValue{
		":uid": strAttr(userID),
	}
	switch {
	case start != nil && end != nil:
		cond += " AND ts BETWEEN :start AND :end"
		values[":start"] = numAttr(start.Unix())
		values[":end"] = numAttr(end.Unix())
	case start != nil:
		cond += " AND ts >= :start"
		values[":start"] = numAttr(start.Unix())
	case end != nil:
		cond += " AND ts <= :end"
		values[":end"] = numAttr(end.Unix())
	}

	return &dynamodb.QueryInput{
		TableName:                 aws.String(tableName),
		IndexName:                 aws.String("user_id-ts-index"),
		KeyConditionExpression:    aws.String(cond),
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(true), // ascending by timestamp
	}
}

// DeleteOwned removes the entry iff it exists and belongs to userID.
// Ownership mismatch and non-existence both surface as ErrNotFound.
func (r *WeightRepo) DeleteOwned(ctx context.Context, entryID, userID string) error {
	_, err := r.client.DeleteItem(ctx, deleteOwnedInput(r.tableName, entryID, userID))
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("weight entry not found: %w", domain.ErrNotFound)
	}
	return err
}

func deleteOwnedInput(tableName, entryID, userID string) *dynamodb.DeleteItemInput {
	return &dynamodb.DeleteItemInput{
		TableName:           aws.String(tableName),
		Key:                 strKey("entry_id", entryID),
		ConditionExpression: aws.String("attribute_exists(entry_id) AND user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": strAttr(userID),
		},
	}
}
