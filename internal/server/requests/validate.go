// Package requests holds the request bodies accepted by the HTTP and gRPC
// surfaces. Validate normalizes input and aggregates every field failure
// into a *common.ValidationError keyed by JSON field name.
package requests

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

// Policy carries the configurable parts of validation.
type Policy struct {
	// MinPasswordEntropy is the minimum entropy in bits a new password must
	// reach. Zero disables the strength check.
	MinPasswordEntropy float64
}

const (
	minPasswordLength = 6
	maxPasswordLength = 50
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,40}$`)

// reservedUsernames are the static path segments under the account routes;
// a profile named like one of them could never be looked up by username.
var reservedUsernames = []string{
	"register", "login", "logout", "refresh-token", "verify-email", "resend-verify-email",
	"forgot-password", "verify-forgot-password", "reset-password", "me", "follow", "change-password",
}

var notReserved = validation.By(func(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil {
		return nil
	}
	for _, name := range reservedUsernames {
		if strings.EqualFold(*s, name) {
			return errors.New("is reserved")
		}
	}
	return nil
})

// trimmed returns s without surrounding spaces; nil stays nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// accepted date_of_birth layouts
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// normalizeEmail trims and lowercases; stored emails are always normalized.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func passwordRules(p Policy) []validation.Rule {
	rules := []validation.Rule{
		validation.Required,
		validation.Length(minPasswordLength, maxPasswordLength),
	}
	if p.MinPasswordEntropy > 0 {
		rules = append(rules, validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if s == "" {
				return nil
			}
			return passwordvalidator.Validate(s, p.MinPasswordEntropy)
		}))
	}
	return rules
}

func matches(other string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s != other {
			return errors.New("passwords do not match")
		}
		return nil
	})
}

var isDate = validation.By(func(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s == "" {
		return nil
	}
	if _, err := parseDate(s); err != nil {
		return errors.New("must be an ISO 8601 date")
	}
	return nil
})

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// fieldErrors converts ozzo's validation.Errors into the common type.
// Anything else is returned as is.
func fieldErrors(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		fields := make(map[string]string, len(errs))
		for field, fe := range errs {
			fields[field] = fe.Error()
		}
		return common.NewValidationError(fields)
	}
	return fmt.Errorf("validate request: %w", err)
}
