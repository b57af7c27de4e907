package domain

import "time"

type Place struct {
	PlaceID       string  `json:"id" dynamodbav:"place_id"`
	Name          string  `json:"name" dynamodbav:"name"`
	Description   string  `json:"description" dynamodbav:"description"`
	LocationName  string  `json:"location_name,omitempty" dynamodbav:"location_name"`
	Latitude      float64 `json:"latitude" dynamodbav:"latitude"`
	Longitude     float64 `json:"longitude" dynamodbav:"longitude"`
	AverageRating float64 `json:"average_rating" dynamodbav:"average_rating"`
	// NameLower is a lowercased copy of Name maintained for substring search.
	NameLower string `json:"-" dynamodbav:"name_lower"`
	ImageURL  string `json:"image_url,omitempty" dynamodbav:"image_url"`
	// Distance in km from the caller's coordinates; computed per request,
	// never persisted.
	Distance  *float64  `json:"distance,omitempty" dynamodbav:"-"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreatePlaceRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	LocationName string `json:"location_name"`
	// Pointers so 0 (equator, prime meridian) passes required.
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	ImageURL  string   `json:"image_url"`
}

type UpdatePlaceRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	LocationName *string  `json:"location_name"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	ImageURL     *string  `json:"image_url"`
}
