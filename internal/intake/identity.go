package intake

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"
)

// TimestampLayout is the timestamp part of a document identity.
const TimestampLayout = "2006-01-02T15:04:05.000000"

var processedLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// DeriveID returns the document identity for filename: the first eight hex
// characters of its SHA-256 digest, an underscore, and the intake time.
func DeriveID(filename string, now time.Time) string {
	sum := sha256.Sum256([]byte(filename))
	return hex.EncodeToString(sum[:])[:8] + "_" + now.Format(TimestampLayout)
}

// IsPDF reports whether name has a .pdf extension, in any case.
func IsPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// IsProcessedName reports whether name already has the "<hash>_<timestamp>.pdf"
// form produced by DeriveID.
func IsProcessedName(name string) bool {
	if len(name) < 9+len(".pdf") || name[8] != '_' {
		return false
	}
	if _, err := hex.DecodeString(name[:8]); err != nil {
		return false
	}

	stamp := name[9 : len(name)-len(".pdf")]
	for _, layout := range processedLayouts {
		if _, err := time.Parse(layout, stamp); err == nil {
			return true
		}
	}
	return false
}

// ValidateName checks that the base of name is an unprocessed PDF.
func ValidateName(name string) error {
	base := path.Base(strings.TrimSpace(name))
	if base == "." || base == "/" {
		return fmt.Errorf("%w: empty name", ErrInvalidFile)
	}
	if !IsPDF(base) {
		return fmt.Errorf("%w: %s", ErrNotPDF, base)
	}
	if IsProcessedName(base) {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessed, base)
	}
	return nil
}
