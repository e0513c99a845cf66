package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID generates a prefixed record id, e.g. "ord_7f3a...".
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}

// NewGroupCode generates a short human-shareable group-order code.
func NewGroupCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "GRP-" + strings.ToUpper(raw[:6])
}
