package service

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// IsStrongPassword applies the minimal policy: at least 8 characters, one
// letter and one digit. Returns violation codes for the error meta.
func IsStrongPassword(password string) (bool, []string) {
	var violations []string
	if len(password) < 8 {
		violations = append(violations, "min_length_8")
	}
	hasLetter, hasDigit := false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		violations = append(violations, "must_include_letter")
	}
	if !hasDigit {
		violations = append(violations, "must_include_digit")
	}
	return len(violations) == 0, violations
}

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPassword(plain, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
