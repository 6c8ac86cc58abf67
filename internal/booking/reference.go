package booking

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// referenceAlphabet avoids characters that read ambiguously over the phone
// (no I, L, O, or U).
const referenceAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const referenceSuffixLen = 4

// NewBookingReference builds a human-quotable reference such as
// BK3F2A9C1B09151430X7QP: a fixed prefix, the first eight hex digits of
// the tenant ID, the local start time as MMDDHHMM, and a random suffix.
// Uniqueness is enforced by the database; on a collision the caller
// generates a fresh one.
func NewBookingReference(tenantID uuid.UUID, start time.Time) (string, error) {
	suffix, err := gonanoid.Generate(referenceAlphabet, referenceSuffixLen)
	if err != nil {
		return "", fmt.Errorf("booking: generate reference suffix: %w", err)
	}
	tenantPart := strings.ToUpper(hex.EncodeToString(tenantID[:4]))
	return fmt.Sprintf("BK%s%s%s", tenantPart, start.Format("01021504"), suffix), nil
}
