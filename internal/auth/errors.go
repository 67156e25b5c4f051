package auth

import "errors"

var (
	// ErrAuthenticationFailed means no usable credential was presented
	// or the credential's subject could not be resolved.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUserNotFound is returned by a UserStore when the subject id
	// references a deleted or non-existent user.
	ErrUserNotFound = errors.New("user not found")
)
