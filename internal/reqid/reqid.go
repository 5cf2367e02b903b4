package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the request ID in both directions.
const Header = "X-Request-Id"

// key is the context key for the request ID.
type key struct{}

// NewContext returns a copy of parent with a request ID stored.
// A well-formed UUID in incoming is reused; anything else is replaced by a
// fresh random one. It also returns the ID.
func NewContext(parent context.Context, incoming string) (context.Context, string) {
	id := ""
	if u, err := uuid.Parse(incoming); err == nil {
		id = u.String()
	} else {
		id = uuid.NewString()
	}
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok
}
