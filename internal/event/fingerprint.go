package event

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// fingerprintSep delimits the hash input fields. It never appears in a slug
// or a civil date, so the concatenation is unambiguous.
const fingerprintSep = "|"

// NormalizeTitle lowers, trims, and collapses whitespace so cosmetic title
// differences do not defeat deduplication.
func NormalizeTitle(title string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(strings.ToLower(title)), " ")
}

// Fingerprint computes the deduplication hash for an event: SHA-256 over
// venue ID, the date's civil day, and the normalized title. Two listings with
// the same venue, day, and title are the same event regardless of
// time-of-day. This digest is the sole idempotence mechanism for
// re-ingestion.
func Fingerprint(venueID string, date time.Time, title string) string {
	day := date.Format("2006-01-02")
	input := venueID + fingerprintSep + day + fingerprintSep + NormalizeTitle(title)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
