package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-places-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
//
// Email uniqueness is enforced with claim marker items stored in the same
// table under user_id "email#<address>". Every write that touches an email
// pairs the user item with its claim in one transaction, so two concurrent
// writers for the same address cannot both commit.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// emailClaimKey is the synthetic user_id under which an email's uniqueness
// marker is stored.
func emailClaimKey(email string) string {
	return "email#" + strings.ToLower(email)
}

// Put stores a new user and claims their email in the same transaction.
// Fails with ErrConflict when the email is already claimed.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                strKey("user_id", emailClaimKey(u.Email)),
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks a user up through the email GSI. Emails are stored
// lowercased, so the lookup is case-insensitive. Claim markers carry no
// email attribute and never appear in the index.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-index"),
		KeyConditionExpression:    aws.String("#e = :v"),
		ExpressionAttributeNames:  map[string]string{"#e": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: strings.ToLower(email)}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

// UpdateEmail moves a user to a new address: releases the old claim, takes
// the new one, and rewrites the email attribute, all in one transaction.
// Fails with ErrConflict when the new address is already claimed.
func (r *UserRepo) UpdateEmail(ctx context.Context, userID, newEmail string) error {
	u, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	newEmail = strings.ToLower(newEmail)
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       strKey("user_id", emailClaimKey(u.Email)),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                strKey("user_id", emailClaimKey(newEmail)),
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
			{Update: &types.Update{
				TableName:                aws.String(r.tableName),
				Key:                      strKey("user_id", userID),
				UpdateExpression:         aws.String("SET #e = :e, updated_at = :t"),
				ExpressionAttributeNames: map[string]string{"#e": "email"},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":e": &types.AttributeValueMemberS{Value: newEmail},
					":t": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
				},
			}},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return r.Update(ctx, userID, map[string]interface{}{"is_active": active})
}

// Delete removes the user and releases their email claim together.
func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	u, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       strKey("user_id", userID),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       strKey("user_id", emailClaimKey(u.Email)),
			}},
		},
	})
	return err
}

// ScanPage returns a page of users.
// cursor is a base64-encoded user_id used as ExclusiveStartKey.
// Returns the items, a next cursor (empty string when no more pages), and any error.
func (r *UserRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
		// Claim markers carry only a user_id; filter them out of listings.
		FilterExpression:         aws.String("attribute_exists(#e)"),
		ExpressionAttributeNames: map[string]string{"#e": "email"},
	}
	if cursor != "" {
		userID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("user_id", userID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var users []domain.User
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &users); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["user_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return users, nextCursor, nil
}
