package models

import "time"

// User represents a registered account within the Tradepost marketplace.
type User struct {
	ID          string
	Email       string
	Password    string
	Name        string
	PhoneNumber string
	Nickname    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is a listing posted by a user, with its images stored remotely.
type Product struct {
	ID        string
	SellerID  string
	Title     string
	Category  string
	Price     int64
	Body      string
	CreatedAt time.Time
}

// ProductImage records a single uploaded image for a product. StorageKey is
// the randomly generated object name, decoupled from the client filename.
type ProductImage struct {
	ID         string
	ProductID  string
	URL        string
	StorageKey string
	CreatedAt  time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
