package port

import "errors"

// ErrNotFound is returned by repositories when a lookup matches no record,
// regardless of the backing driver.
var ErrNotFound = errors.New("record not found")
