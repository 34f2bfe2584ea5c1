package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/role_gate/internal/roles"
)

const MinPasswordLength = 8

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func checkEmail(v *ValidationError, email string) {
	switch {
	case email == "":
		v.add("email", "The email field is required.")
	case !validEmail(email):
		v.add("email", "The email must be a valid email address.")
	}
}

func validateRegister(name, email, password, role string) error {
	v := &ValidationError{}

	if strings.TrimSpace(name) == "" {
		v.add("name", "The name field is required.")
	}

	checkEmail(v, email)

	switch {
	case password == "":
		v.add("password", "The password field is required.")
	case utf8.RuneCountInString(password) < MinPasswordLength:
		v.add("password", fmt.Sprintf("The password must be at least %d characters.", MinPasswordLength))
	}

	switch {
	case role == "":
		v.add("role", "The role field is required.")
	case !roles.Role(role).Valid():
		v.add("role", "The selected role is invalid.")
	}

	return v.orNil()
}

func validateLogin(email, password string) error {
	v := &ValidationError{}
	checkEmail(v, email)
	if password == "" {
		v.add("password", "The password field is required.")
	}
	return v.orNil()
}
