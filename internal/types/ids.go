package types

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a short opaque identifier with the given prefix, e.g.
// "bndl_3fa85f64". Eight hex characters are plenty for per-run uniqueness;
// these ids are display handles, not database keys.
func NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + hex[:8]
}
