package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-places-api/internal/domain"
)

// SavedPlaceRepo manages the user→place favorites links.
// PK: user_id, SK: place_id.
type SavedPlaceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSavedPlaceRepo(client *dynamodb.Client, tableName string) *SavedPlaceRepo {
	return &SavedPlaceRepo{client: client, tableName: tableName}
}

func (r *SavedPlaceRepo) Put(ctx context.Context, sp *domain.SavedPlace) error {
	item, err := attributevalue.MarshalMap(sp)
	if err != nil {
		return fmt.Errorf("marshal saved place: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SavedPlaceRepo) Exists(ctx context.Context, userID, placeID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "place_id", placeID),
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}

func (r *SavedPlaceRepo) Delete(ctx context.Context, userID, placeID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "place_id", placeID),
	})
	return err
}

func (r *SavedPlaceRepo) ListByUser(ctx context.Context, userID string) ([]domain.SavedPlace, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":u": &types.AttributeValueMemberS{Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	var saved []domain.SavedPlace
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}
