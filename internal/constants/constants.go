package constants

// ContextKeyUserID is the session and gin-context key for the authenticated user.
const ContextKeyUserID = "user_id"

// MinPasswordLength is the minimum accepted password length on signup.
const MinPasswordLength = 8

// Pagination bounds
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
