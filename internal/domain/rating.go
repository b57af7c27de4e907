package domain

import "time"

type Rating struct {
	RatingID  string    `json:"id" dynamodbav:"rating_id"`
	PlaceID   string    `json:"place_id" dynamodbav:"place_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Rating    float64   `json:"rating" dynamodbav:"rating"`
	Message   string    `json:"message,omitempty" dynamodbav:"message"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

type CreateRatingRequest struct {
	Rating  float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Message string  `json:"message"`
}

// SavedPlace links a user to a place on their favorites list.
// PK: user_id, SK: place_id.
type SavedPlace struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	PlaceID   string    `json:"place_id" dynamodbav:"place_id"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
