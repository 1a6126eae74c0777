// Package validation provides request validation helpers shared by
// handlers, built on go-playground/validator plus the email normalization
// rules the account store depends on.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is a shared validator instance for request structs.
var Validate = validator.New()

// NormalizeEmail canonicalizes an email address for storage and lookup:
// the whole address is lowercased and periods are stripped from the local
// part, since mail delivery ignores them. Addresses containing quote
// characters are rejected — quoting is where most of the odd corners of
// the address grammar live, and none of them are worth supporting.
func NormalizeEmail(email string) (string, error) {
	if strings.Contains(email, `"`) {
		return "", fmt.Errorf("email must not contain quote characters")
	}

	lowered := strings.ToLower(strings.TrimSpace(email))
	local, domain, ok := strings.Cut(lowered, "@")
	if !ok || local == "" || domain == "" {
		return "", fmt.Errorf("invalid email address")
	}

	local = strings.ReplaceAll(local, ".", "")
	if local == "" {
		return "", fmt.Errorf("invalid email address")
	}

	return local + "@" + domain, nil
}
