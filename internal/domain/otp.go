package domain

// EmailOTP is the pending verification code for an email address.
// PK: email — at most one live code per email; issuing a new one replaces
// the old record. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type EmailOTP struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
