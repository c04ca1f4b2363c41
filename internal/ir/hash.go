package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix lets the hash layout change without collisions.
const (
	DomainPlan = "listfuse/plan/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
// The null byte separates domain from data.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PlanID computes the content-addressed ID of a fusion plan from its
// canonical description. Equal plans over equal inputs share an ID, so the
// flush journal can recognise a replayed flush.
func PlanID(plan IRObject) (string, error) {
	canonical, err := MarshalCanonical(plan)
	if err != nil {
		return "", fmt.Errorf("PlanID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// MustPlanID is like PlanID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPlanID(plan IRObject) string {
	id, err := PlanID(plan)
	if err != nil {
		panic(err)
	}
	return id
}
