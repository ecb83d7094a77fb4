package application

import (
	"crypto/sha256"
	"encoding/hex"
)

// PseudoID derives a stable identity for a contact person at a company. The
// zaken service has no durable id for that pairing, so the kvk number and the
// contact name together stand in for one. The digest is deterministic: the
// same pairing always maps to the same partij on re-registration.
func PseudoID(kvkNummer, contactNaam string) string {
	sum := sha256.Sum256([]byte(kvkNummer + "-" + contactNaam))
	return hex.EncodeToString(sum[:])
}
