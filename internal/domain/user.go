package domain

import (
	"time"
)

// User is the identity record persisted in the users collection.
//
// Password and RefreshToken never serialize to JSON, so any user sent to a
// client is already the sanitized projection. RefreshToken is a single slot:
// every successful login overwrites it, and logout removes the field
// entirely.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Email        string    `bson:"email" json:"email"`
	Password     string    `bson:"password" json:"-"`
	RefreshToken string    `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
