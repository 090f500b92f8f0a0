package memory

import "errors"

var (
	// ErrIndexUnavailable means no vector index is configured.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDuplicateContent is returned by a MemoryRepository when the
	// (user, content hash) pair already exists.
	ErrDuplicateContent = errors.New("duplicate memory content")

	ErrEmptyUserID       = errors.New("user id is required")
	ErrEmptyContent      = errors.New("content is required")
	ErrInvalidImportance = errors.New("importance must be between 0 and 10")
	ErrInvalidMode       = errors.New("invalid memory mode")
	ErrInvalidPrivacy    = errors.New("invalid privacy level")
	ErrInvalidMemoryType = errors.New("invalid memory type")
	ErrInvalidFocus      = errors.New("invalid focus configuration")
)

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyUserID, ErrEmptyContent, ErrInvalidImportance, ErrInvalidMode,
		ErrInvalidPrivacy, ErrInvalidMemoryType, ErrInvalidFocus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
