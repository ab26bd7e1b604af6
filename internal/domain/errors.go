package domain

import "errors"

var (
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStorage            = errors.New("failed to store data in db")
	ErrKeyUnavailable     = errors.New("error while reading private key")
	ErrInvalidToken       = errors.New("invalid token")
	ErrHashing            = errors.New("failed to hash password")
)
