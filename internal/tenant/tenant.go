package tenant

import (
	"context"
	"errors"
	"regexp"
)

// Every persisted row and every external call is scoped by a tenant id.
// Ids follow the record-store base id shape: "app" followed by 8-20
// alphanumeric/underscore characters. The literal below is additionally
// accepted for rows that predate tenant scoping.
const DefaultPlaceholder = "default_instagram"

var (
	ErrRequired = errors.New("tenant id is required")
	ErrInvalid  = errors.New("tenant id is invalid")
)

var idPattern = regexp.MustCompile(`^app[A-Za-z0-9_]{8,20}$`)

// Valid reports whether id is an acceptable tenant id.
func Valid(id string) bool {
	return id == DefaultPlaceholder || idPattern.MatchString(id)
}

// Resolve picks the effective tenant id: the header wins over the body
// field, and a missing id is an error rather than a silent default.
func Resolve(header, body string) (string, error) {
	id := header
	if id == "" {
		id = body
	}
	if id == "" {
		return "", ErrRequired
	}
	if !Valid(id) {
		return "", ErrInvalid
	}
	return id, nil
}

type ctxKey struct{}

// WithTenant returns a context carrying the tenant id.
func WithTenant(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the tenant id set by WithTenant.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok
}
