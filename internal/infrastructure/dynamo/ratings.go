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

// RatingRepo provides typed DynamoDB operations for the ratings table.
type RatingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRatingRepo(client *dynamodb.Client, tableName string) *RatingRepo {
	return &RatingRepo{client: client, tableName: tableName}
}

func (r *RatingRepo) Put(ctx context.Context, rating *domain.Rating) error {
	item, err := attributevalue.MarshalMap(rating)
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RatingRepo) ListByPlace(ctx context.Context, placeID string) ([]domain.Rating, error) {
	return r.queryGSI(ctx, "place_id-index", "place_id", placeID)
}

func (r *RatingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	return r.queryGSI(ctx, "user_id-index", "user_id", userID)
}

func (r *RatingRepo) queryGSI(ctx context.Context, index, attr, value string) ([]domain.Rating, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
	})
	if err != nil {
		return nil, err
	}
	var ratings []domain.Rating
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}
