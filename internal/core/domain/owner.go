package domain

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrUnauthorized       = errors.New("unauthorized")
)

const (
	OwnerSubject = "owner"
	bcryptCost   = 12
)

// Owner is the single account that may drive the tracker over the API.
type Owner struct {
	PasswordHash string
}

func HashPassword(plainPassword string) (string, error) {
	if utf8.RuneCountInString(plainPassword) < 8 {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (o Owner) CheckPassword(plainPassword string) error {
	if o.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(plainPassword)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
