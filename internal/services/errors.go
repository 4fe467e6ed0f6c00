package services

import "errors"

// Health errors
var (
	ErrNoDatabase = errors.New("database not configured")
)
