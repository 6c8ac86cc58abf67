package booking

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBookingReferenceFormat(t *testing.T) {
	tenantID := uuid.MustParse("3f2a9c1b-0000-4000-8000-000000000000")
	lagos, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("load Africa/Lagos: %v", err)
	}
	start := time.Date(2025, time.September, 15, 14, 30, 0, 0, lagos)

	ref, err := NewBookingReference(tenantID, start)
	if err != nil {
		t.Fatalf("new booking reference: %v", err)
	}

	if !strings.HasPrefix(ref, "BK3F2A9C1B") {
		t.Errorf("expected tenant prefix BK3F2A9C1B, got %s", ref)
	}
	if !strings.Contains(ref, "09151430") {
		t.Errorf("expected local start 09151430 in %s", ref)
	}
	pattern := regexp.MustCompile(`^BK[0-9A-F]{8}\d{8}[0-9A-HJKMNP-TV-Z]{4}$`)
	if !pattern.MatchString(ref) {
		t.Errorf("reference %s does not match expected shape", ref)
	}
	for _, ambiguous := range []byte{'I', 'L', 'O', 'U'} {
		if strings.IndexByte(ref[18:], ambiguous) >= 0 {
			t.Errorf("suffix of %s contains ambiguous character %c", ref, ambiguous)
		}
	}
}

func TestNewBookingReferenceSuffixVaries(t *testing.T) {
	tenantID := uuid.New()
	start := time.Date(2025, time.September, 15, 14, 30, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		ref, err := NewBookingReference(tenantID, start)
		if err != nil {
			t.Fatalf("new booking reference: %v", err)
		}
		seen[ref] = true
	}
	if len(seen) < 2 {
		t.Error("expected random suffixes to differ across generations")
	}
}
