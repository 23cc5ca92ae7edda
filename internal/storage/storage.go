package storage

import "tokenScope/internal/model"

// Storage defines a sink for token records.
type Storage interface {
	PutTokens(network uint64, records []model.TokenRecord) error
}

// TokenLine is one exported token.
type TokenLine struct {
	Network     uint64 `json:"network"`
	NetworkName string `json:"network_name"`
	Tradable    bool   `json:"tradable"`
	model.TokenRecord
}
