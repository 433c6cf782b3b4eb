package library

import "io"

// Sealer encrypts export snapshots. Sealing uses only the public key, so
// exports never prompt; opening a sealed snapshot needs the passphrase.
type Sealer interface {
	// Setup generates a key pair and protects the private key with passphrase.
	Setup(passphrase string) error

	// Seal encrypts data read from r and writes ciphertext to w.
	Seal(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns an Opener for the session.
	Unlock(passphrase string) (Opener, error)

	// IsConfigured reports whether a key pair exists.
	IsConfigured() bool

	// Sealed reports whether data looks like output of Seal.
	Sealed(data []byte) bool
}

// Opener decrypts sealed snapshots with an unlocked private key.
type Opener interface {
	Open(r io.Reader, w io.Writer) error
}
