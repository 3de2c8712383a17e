package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)

// userSafe lists sentinel errors whose message may be shown to API callers.
var userSafe []error

// RegisterUserSafe marks an error as safe to surface verbatim.
func RegisterUserSafe(errs ...error) {
	userSafe = append(userSafe, errs...)
}

// UserSafeMessage maps an error to a message suitable for API responses.
// Unknown errors collapse to a generic message so internals never leak.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, safe := range userSafe {
		if errors.Is(err, safe) {
			return err.Error()
		}
	}
	return "internal error"
}
