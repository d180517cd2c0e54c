package importer

import (
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Fingerprint derives the duplicate-detection identity of a transaction.
// Equal amounts with different scales ("45.5", "45.50") hash the same, and
// descriptions compare case- and whitespace-insensitively.
func Fingerprint(date civil.Date, amount decimal.Decimal, description, reference string) model.Fingerprint {
	var b strings.Builder
	b.WriteString(date.String())
	b.WriteByte('|')
	b.WriteString(amount.String())
	b.WriteByte('|')
	b.WriteString(NormalizeDescription(description))
	b.WriteByte('|')
	b.WriteString(strings.TrimSpace(reference))

	sum := xxhash.Sum64String(b.String())
	s := strconv.FormatUint(sum, 16)
	return model.Fingerprint(strings.Repeat("0", 16-len(s)) + s)
}

// NormalizeDescription lower-cases and collapses whitespace.
func NormalizeDescription(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// FingerprintSet is a set of fingerprints.
type FingerprintSet map[model.Fingerprint]struct{}

// NewFingerprintSet builds a set from fps.
func NewFingerprintSet(fps ...model.Fingerprint) FingerprintSet {
	s := make(FingerprintSet, len(fps))
	for _, fp := range fps {
		s.Add(fp)
	}
	return s
}

// Add inserts fp.
func (s FingerprintSet) Add(fp model.Fingerprint) { s[fp] = struct{}{} }

// Has reports whether fp is in the set. A nil set is empty.
func (s FingerprintSet) Has(fp model.Fingerprint) bool {
	_, ok := s[fp]
	return ok
}

// IsDuplicate reports whether fp was already persisted or already seen
// earlier in the current batch.
func IsDuplicate(fp model.Fingerprint, prior, batch FingerprintSet) bool {
	return prior.Has(fp) || batch.Has(fp)
}
