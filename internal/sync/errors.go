package sync

import (
	"errors"
	"fmt"

	"prestasync/internal/services/prestashop"
)

// ConfigError means a store-level default required for normalization is
// missing. It is fatal for the whole pass.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sync: missing required store configuration: %s", e.Missing)
}

// HandleConflictError is raised when a collection create would collide
// with an existing collection owned by a different source category.
// Lookup is by handle, so two categories sharing a link_rewrite would
// otherwise merge silently.
type HandleConflictError struct {
	Handle       string
	CategoryID   int
	CollectionID string
}

func (e *HandleConflictError) Error() string {
	return fmt.Sprintf("sync: handle %q of category %d already belongs to collection %s",
		e.Handle, e.CategoryID, e.CollectionID)
}

// IsSourceUnavailable reports whether err is a transport-level failure of
// the source API (as opposed to a lookup miss or a catalog write failure).
func IsSourceUnavailable(err error) bool {
	var apiErr *prestashop.APIError
	return errors.As(err, &apiErr)
}
