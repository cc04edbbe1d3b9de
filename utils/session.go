package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewSessionToken returns an opaque per-browser-session identifier. The
// token only approximates "unique visitor"; it carries no identity and is
// never validated server-side.
func NewSessionToken() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
