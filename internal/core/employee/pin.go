package employee

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPINLength = 4
	maxPINLength = 8
)

// PINHasher は PIN のハッシュ化と照合を行います。
type PINHasher interface {
	Hash(pin string) (string, error)
	Compare(hash, pin string) error
}

// BcryptHasher は bcrypt による PINHasher 実装です。
type BcryptHasher struct {
	Cost int
}

// Hash は PIN を bcrypt ハッシュに変換します。
func (h BcryptHasher) Hash(pin string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", fmt.Errorf("employee: hash pin: %w", err)
	}
	return string(b), nil
}

// Compare は PIN がハッシュと一致しない場合 ErrPINMismatch を返します。
func (h BcryptHasher) Compare(hash, pin string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPINMismatch
	default:
		return fmt.Errorf("employee: compare pin: %w", err)
	}
}

// ValidatePIN は PIN が 4〜8 桁の数字であるかを検証します。
func ValidatePIN(pin string) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}
