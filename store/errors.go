package store

import "errors"

// ErrUserNotFound is returned when an operation targets an unknown user.
var ErrUserNotFound = errors.New("user not found")

// ErrLinkNotFound is returned when a link to delete does not exist.
var ErrLinkNotFound = errors.New("link not found")

// ErrLinkQuotaExceeded is returned when a user is at their link cap.
var ErrLinkQuotaExceeded = errors.New("link quota exceeded")
