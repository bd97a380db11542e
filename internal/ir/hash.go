package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm changes.
const (
	DomainPlan  = "datacube/plan/v1"
	DomainQuery = "datacube/query/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator removes any domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PlanHash returns a stable identity for a plan. Two plans with the same
// variables, subsets, filter, stored strategies and format hash equally,
// regardless of the order in which strategies were set.
func PlanHash(p Plan) (string, error) {
	canonical, err := MarshalCanonical(p.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("PlanHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// QueryHash returns a stable identity for serialized query text.
func QueryHash(query string) string {
	return hashWithDomain(DomainQuery, []byte(norm.NFC.String(query)))
}
