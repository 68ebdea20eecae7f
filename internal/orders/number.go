package orders

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const orderNumberPrefix = "ORD-"

// NewOrderNumber returns a human-readable order number in the form
// ORD-XXXXXXXX, where the suffix is eight uppercase hex characters drawn
// from a random UUID. Collisions are possible and handled by retrying on
// the unique index.
func NewOrderNumber() string {
	id := uuid.New()
	suffix := hex.EncodeToString(id[:4])
	return orderNumberPrefix + strings.ToUpper(suffix)
}
