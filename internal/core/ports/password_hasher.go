package ports

// PasswordHasher produces and verifies salted, adaptive password digests.
type PasswordHasher interface {
	// Hash returns a self-describing digest embedding algorithm
	// parameters and a fresh random salt; two calls with the same
	// plaintext yield different digests.
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. A mismatch is
	// false, never an error.
	Verify(plaintext, digest string) bool
}
