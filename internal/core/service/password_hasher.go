package service

import "golang.org/x/crypto/bcrypt"

// hashCost is the bcrypt work factor. Raising it slows brute-force
// guessing for newly hashed passwords; existing digests keep the cost
// they were created with.
const hashCost = bcrypt.DefaultCost

// BcryptHasher implements ports.PasswordHasher on top of bcrypt, which
// handles salting and embeds its parameters in the digest.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: hashCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares in constant time relative to the digest; a wrong
// password and a malformed digest both report false.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
