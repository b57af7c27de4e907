package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-places-api/internal/domain"
)

// PlaceRepo provides typed DynamoDB operations for the places table.
type PlaceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPlaceRepo(client *dynamodb.Client, tableName string) *PlaceRepo {
	return &PlaceRepo{client: client, tableName: tableName}
}

func (r *PlaceRepo) Put(ctx context.Context, p *domain.Place) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal place: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PlaceRepo) Get(ctx context.Context, placeID string) (*domain.Place, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("place_id", placeID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("place not found: %w", domain.ErrNotFound)
	}
	var p domain.Place
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlaceRepo) Update(ctx context.Context, placeID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("place_id", placeID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *PlaceRepo) Delete(ctx context.Context, placeID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("place_id", placeID),
	})
	return err
}

// ScanPage returns a page of places, optionally filtered by a
// case-insensitive name substring and a minimum average rating.
// cursor is a base64-encoded place_id used as ExclusiveStartKey.
func (r *PlaceRepo) ScanPage(ctx context.Context, limit int32, cursor, search string, minRating *float64) ([]domain.Place, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}

	var filters []string
	values := map[string]types.AttributeValue{}
	if search != "" {
		// name_lower carries a lowercased copy of the name for substring search.
		filters = append(filters, "contains(name_lower, :s)")
		values[":s"] = &types.AttributeValueMemberS{Value: strings.ToLower(search)}
	}
	if minRating != nil {
		filters = append(filters, "average_rating >= :r")
		values[":r"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", *minRating)}
	}
	if len(filters) > 0 {
		input.FilterExpression = aws.String(strings.Join(filters, " AND "))
		input.ExpressionAttributeValues = values
	}
	if cursor != "" {
		placeID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("place_id", placeID)
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var places []domain.Place
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &places); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["place_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return places, nextCursor, nil
}
