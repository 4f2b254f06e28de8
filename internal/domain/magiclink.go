package domain

import "time"

// MagicLinkToken is a single-use login token emailed to a user.
// PK: token. Consumed flips false -> true exactly once, on redemption;
// rows are never mutated otherwise. ExpiresAt doubles as the DynamoDB
// TTL attribute so expired rows are eventually reaped, but redemption
// always checks expiry itself.
type MagicLinkToken struct {
	Token     string    `dynamodbav:"token"`
	UserID    string    `dynamodbav:"user_id"`
	ExpiresAt int64     `dynamodbav:"expires_at"` // Unix seconds
	Consumed  bool      `dynamodbav:"consumed"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}
