package domain

import "time"

// User is created lazily on the first magic-link request for an unseen
// email and is never deleted.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Identity is the resolved caller identity attached to every
// authenticated request.
type Identity struct {
	UserID string
	Email  string
}
