package simulate

import (
	"fmt"

	"github.com/google/uuid"
)

// NewTrackingCode generates a postal-style tracking code: two letters, nine
// digits and the BR suffix. The digits come from a fresh UUID so codes are
// unique enough without coordinating with the database.
func NewTrackingCode() string {
	id := uuid.New().ID()
	return fmt.Sprintf("SE%09dBR", id%1_000_000_000)
}
