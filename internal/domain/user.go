// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUserIDLen   = 64
	MaxNicknameLen = 36
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
)

type UserID string

// User is the identity issued by the external auth provider. The chat core
// never creates users, it only carries the id and display nickname through.
type User struct {
	ID       UserID `json:"id"`
	Nickname string `json:"nickname"`
}

// ValidateUserID checks the identity string supplied at handshake.
func ValidateUserID(id UserID) error {
	if len(id) == 0 {
		return ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return ErrUserIDTooLong
	}
	return nil
}
