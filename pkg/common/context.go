package common

import "context"

// Role is a caller's role as resolved by the identity layer
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the resolved caller identity. The core never loads or
// mutates the user record behind it; it is carried by id and role only.
type Identity struct {
	ID   string
	Role Role
}

// ContextKey represents a context key type
type ContextKey string

const (
	ContextKeyIdentity  ContextKey = "identity"
	ContextKeyRequestID ContextKey = "request_id"
)

// WithIdentity adds the caller identity to the context
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

// GetIdentity extracts the caller identity from the context.
// The second return is false for anonymous requests.
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(Identity)
	return identity, ok
}

// IdentityOrNil returns a pointer to the caller identity, or nil for
// anonymous requests. Service operations take this form directly.
func IdentityOrNil(ctx context.Context) *Identity {
	if identity, ok := GetIdentity(ctx); ok {
		return &identity
	}
	return nil
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts the request ID from the context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}
