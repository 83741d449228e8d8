package auth

import (
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

// Field error messages shown next to the form inputs
const (
	MsgNameTooShort     = "Name must be at least 2 characters."
	MsgInvalidEmail     = "Please enter a valid email address."
	MsgPasswordTooShort = "Password must be at least 8 characters."
	MsgPasswordRequired = "Password is required."
)

// ValidationErrors maps a form field to its message
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+v[f])
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ValidateSignUp checks the sign-up form
func ValidateSignUp(req SignUpRequest) error {
	errs := ValidationErrors{}
	if utf8.RuneCountInString(req.Name) < 2 {
		errs["name"] = MsgNameTooShort
	}
	if !ValidEmail(req.Email) {
		errs["email"] = MsgInvalidEmail
	}
	if utf8.RuneCountInString(req.Password) < 8 {
		errs["password"] = MsgPasswordTooShort
	}
	return errs.orNil()
}

// ValidateSignIn checks the sign-in form
func ValidateSignIn(req SignInRequest) error {
	errs := ValidationErrors{}
	if !ValidEmail(req.Email) {
		errs["email"] = MsgInvalidEmail
	}
	if req.Password == "" {
		errs["password"] = MsgPasswordRequired
	}
	return errs.orNil()
}

// ValidEmail accepts a bare address with a dotted domain
func ValidEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
