package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"complib/internal/library"
)

// testHeader marks output of TestSealer.
var testHeader = []byte("COMPLIB-TEST-SEAL\n")

// TestSealer is a deterministic, crypto-free Sealer for tests. Seal prepends
// testHeader and Open strips it. Unlock accepts only the passphrase given to
// Setup, when Setup was called.
type TestSealer struct {
	passphrase string
	configured bool
}

var _ library.Sealer = (*TestSealer)(nil)

func NewTestSealer() *TestSealer {
	return &TestSealer{configured: true}
}

func (s *TestSealer) Setup(passphrase string) error {
	s.passphrase = passphrase
	s.configured = true
	return nil
}

func (s *TestSealer) IsConfigured() bool { return s.configured }

func (s *TestSealer) Seal(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (s *TestSealer) Sealed(data []byte) bool {
	return bytes.HasPrefix(data, testHeader)
}

func (s *TestSealer) Unlock(passphrase string) (library.Opener, error) {
	if s.passphrase != "" && passphrase != s.passphrase {
		return nil, errors.New("wrong passphrase")
	}
	return testOpener{}, nil
}

type testOpener struct{}

func (testOpener) Open(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return errors.New("invalid test seal header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
