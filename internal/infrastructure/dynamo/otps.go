package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-places-api/internal/domain"
)

// OTPRepo manages pending email verification codes.
// PK: email. A PutItem on the same email replaces the previous record, which
// is what keeps at most one live code per address.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Put stores the code for the email, superseding any existing record.
func (r *OTPRepo) Put(ctx context.Context, o *domain.EmailOTP) error {
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

// Consume deletes the record for email if — and only if — its code matches
// and it has not expired, as a single conditional write. Returns true when
// this caller consumed the code. Two racing callers cannot both get true:
// the second delete fails its condition because the item is gone.
func (r *OTPRepo) Consume(ctx context.Context, email, code string, now int64) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("email", email),
		ConditionExpression:      aws.String("#c = :code AND expires_at > :now"),
		ExpressionAttributeNames: map[string]string{"#c": "code"}, // "code" is a DynamoDB reserved word
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
			":now":  &types.AttributeValueMemberN{Value: strconv.FormatInt(now, 10)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// Absent, wrong code, or expired — indistinguishable on purpose.
			return false, nil
		}
		return false, err
	}
	return true, nil
}
