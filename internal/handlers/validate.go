package handlers

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

var phonePattern = regexp.MustCompile(`^[0-9]{3}-[0-9]{4}-[0-9]{4}$`)

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}

// validatePassword enforces the sign-up password policy: 8 to 20 characters
// containing at least one letter, one digit, and one special character, with
// no whitespace.
func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) < 8 || len(password) > 20 {
		return errors.New("password must be between 8 and 20 characters")
	}

	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return errors.New("password must not contain whitespace")
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasLetter || !hasDigit || !hasSpecial {
		return errors.New("password must contain at least one letter, one digit, and one special character")
	}
	return nil
}

func validatePhoneNumber(phone string) error {
	if phone == "" {
		return errors.New("phone number is required")
	}
	if !phonePattern.MatchString(phone) {
		return errors.New("phone number must be in the form 010-XXXX-XXXX")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	return nil
}

func validateNickname(nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return errors.New("nickname is required")
	}
	if len([]rune(nickname)) < 2 {
		return errors.New("nickname is too short")
	}
	return nil
}

func validateProductCreate(req productCreateRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return errors.New("category is required")
	}
	if req.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}
