package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a submitted password against the shared secret, given
// either as a bcrypt hash or in plain text. The hash wins when both are set.
type Verifier struct {
	plain []byte
	hash  []byte
}

func NewVerifier(plain, hash string) *Verifier {
	v := &Verifier{}
	if hash != "" {
		v.hash = []byte(hash)
	} else {
		v.plain = []byte(plain)
	}
	return v
}

func (v *Verifier) Verify(candidate string) bool {
	if v.hash != nil {
		return bcrypt.CompareHashAndPassword(v.hash, []byte(candidate)) == nil
	}
	if len(v.plain) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(v.plain, []byte(candidate)) == 1
}
