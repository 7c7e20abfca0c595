package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are JWT claims for player tokens.
type PlayerClaims struct {
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

// RegisterRequest is the request body for player registration.
type RegisterRequest struct {
	Nickname string `json:"nickname"`
	Language string `json:"language"`
	Location string `json:"location,omitempty"`
}

// RegisterResponse is returned after successful registration.
type RegisterResponse struct {
	PlayerID string  `json:"playerId"`
	Token    string  `json:"token"`
	Ledger   *Ledger `json:"ledger"`
}
