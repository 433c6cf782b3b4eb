package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// ErrNotConfigured is returned when sealing keys have not been generated.
var ErrNotConfigured = errors.New("sealing keys are not configured; run `complib keys init`")

// keyPair is an X25519 key pair on disk. The public key is plaintext; the
// private key is age-encrypted to a scrypt passphrase recipient.
type keyPair struct {
	publicKeyPath  string
	privateKeyPath string
}

func (k keyPair) exists() bool {
	if _, err := os.Stat(k.publicKeyPath); err != nil {
		return false
	}
	if _, err := os.Stat(k.privateKeyPath); err != nil {
		return false
	}
	return true
}

func (k keyPair) generate(passphrase string) error {
	if passphrase == "" {
		return errors.New("passphrase must not be empty")
	}
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	for _, p := range []string{k.publicKeyPath, k.privateKeyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return fmt.Errorf("creating key directory: %w", err)
		}
	}

	if err := os.WriteFile(k.publicKeyPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var sealed bytes.Buffer
	w, err := age.Encrypt(&sealed, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, identity.String()+"\n"); err != nil {
		return fmt.Errorf("writing encrypted private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encrypted private key: %w", err)
	}

	if err := os.WriteFile(k.privateKeyPath, sealed.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	return nil
}

func (k keyPair) recipient() (age.Recipient, error) {
	data, err := os.ReadFile(k.publicKeyPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}

	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	if len(recipients) == 0 {
		return nil, errors.New("no recipients found in public key file")
	}
	return recipients[0], nil
}

func (k keyPair) identity(passphrase string) (age.Identity, error) {
	data, err := os.ReadFile(k.privateKeyPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(data), scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypting private key (wrong passphrase?): %w", err)
	}
	keyData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted private key: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(keyData))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if len(identities) == 0 {
		return nil, errors.New("no identities found in private key")
	}
	return identities[0], nil
}
