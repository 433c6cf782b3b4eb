// Package encryption seals exported library snapshots with age.
package encryption

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"

	"complib/internal/config"
	"complib/internal/library"
)

var (
	binaryHeader = []byte("age-encryption.org/v1")
	armorHeader  = []byte(armor.Header)
)

// AgeSealer seals snapshots to the configured X25519 public key as
// ASCII-armored age files.
type AgeSealer struct {
	keys keyPair
}

var _ library.Sealer = (*AgeSealer)(nil)

// NewAgeSealer creates an AgeSealer using the key paths in cfg.
func NewAgeSealer(cfg config.SealingConfig) *AgeSealer {
	return &AgeSealer{keys: keyPair{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}}
}

// Setup generates a fresh key pair, replacing any existing one.
func (s *AgeSealer) Setup(passphrase string) error {
	return s.keys.generate(passphrase)
}

func (s *AgeSealer) IsConfigured() bool {
	return s.keys.exists()
}

// Seal writes an armored age file encrypted to the public key.
func (s *AgeSealer) Seal(r io.Reader, w io.Writer) error {
	recipient, err := s.keys.recipient()
	if err != nil {
		return err
	}

	aw := armor.NewWriter(w)
	ew, err := age.Encrypt(aw, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(ew, r); err != nil {
		return fmt.Errorf("sealing data: %w", err)
	}
	if err := ew.Close(); err != nil {
		return fmt.Errorf("finalizing seal: %w", err)
	}
	if err := aw.Close(); err != nil {
		return fmt.Errorf("finalizing armor: %w", err)
	}
	return nil
}

// Sealed reports whether data starts with an armored or binary age header.
func (s *AgeSealer) Sealed(data []byte) bool {
	return IsAgeFile(data)
}

// IsAgeFile reports whether data starts with an armored or binary age header,
// ignoring leading whitespace.
func IsAgeFile(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return bytes.HasPrefix(trimmed, armorHeader) || bytes.HasPrefix(trimmed, binaryHeader)
}

// Unlock decrypts the private key with passphrase.
func (s *AgeSealer) Unlock(passphrase string) (library.Opener, error) {
	id, err := s.keys.identity(passphrase)
	if err != nil {
		return nil, err
	}
	return &AgeOpener{identity: id}, nil
}

// AgeOpener opens sealed snapshots with an unlocked identity.
type AgeOpener struct {
	identity age.Identity
}

var _ library.Opener = (*AgeOpener)(nil)

// Open accepts both armored and binary age input.
func (o *AgeOpener) Open(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	var src io.Reader = br
	peek, _ := br.Peek(len(armorHeader) + 16)
	if bytes.HasPrefix(bytes.TrimLeft(peek, " \t\r\n"), armorHeader) {
		src = armor.NewReader(br)
	}

	dr, err := age.Decrypt(src, o.identity)
	if err != nil {
		return fmt.Errorf("opening sealed data: %w", err)
	}
	if _, err := io.Copy(w, dr); err != nil {
		return fmt.Errorf("reading sealed data: %w", err)
	}
	return nil
}
