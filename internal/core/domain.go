package core

import (
	"errors"
	"strings"
)

type (
	// User is the persisted identity record. PasswordHash holds a bcrypt
	// hash, never the plaintext password.
	User struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		PasswordHash string `json:"password"`
	}

	// SessionUser is the persisted session marker: the authenticated user
	// with all password material stripped.
	SessionUser struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          string `json:"id"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        Day    `json:"date"`
		UserID      string `json:"userId"`
		Icon        string `json:"icon,omitempty"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrNoOwner          = errors.New("expense has no owner")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.UserID == "" {
		return ErrNoOwner
	}
	return nil
}

// Session returns the session marker for u.
func (u User) Session() SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
