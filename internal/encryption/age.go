package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"gallery-go/internal/config"
)

// AgeCodec implements Codec using filippo.io/age with an X25519 key pair.
// Both keys live on disk next to the cache; the identity file is 0600. The
// codec runs on every cache read/write, so there is no passphrase unlock
// step. Protection targets the cache database leaving the machine, not a
// compromised account.
type AgeCodec struct {
	recipientPath string
	identityPath  string
}

var _ Codec = (*AgeCodec)(nil)

// NewAgeCodec creates a new AgeCodec from configuration.
func NewAgeCodec(cfg config.EncryptionConfig) *AgeCodec {
	return &AgeCodec{
		recipientPath: cfg.RecipientPath,
		identityPath:  cfg.IdentityPath,
	}
}

// Setup generates a new X25519 key pair and writes both halves to their
// configured paths. Refuses to overwrite existing keys: a regenerated pair
// would orphan every encrypted cache row.
func (c *AgeCodec) Setup() error {
	if c.IsConfigured() {
		return fmt.Errorf("key files already exist at %s", filepath.Dir(c.identityPath))
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.recipientPath), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.identityPath), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	if err := os.WriteFile(c.recipientPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing recipient: %w", err)
	}
	if err := os.WriteFile(c.identityPath, []byte(identity.String()+"\n"), 0600); err != nil {
		return fmt.Errorf("writing identity: %w", err)
	}
	return nil
}

// Encrypt reads plaintext from r and writes age-encrypted ciphertext to w.
func (c *AgeCodec) Encrypt(r io.Reader, w io.Writer) error {
	recipient, err := c.loadRecipient()
	if err != nil {
		return fmt.Errorf("loading recipient: %w", err)
	}

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	return nil
}

// Decrypt reads age-encrypted ciphertext from r and writes plaintext to w.
func (c *AgeCodec) Decrypt(r io.Reader, w io.Writer) error {
	identity, err := c.loadIdentity()
	if err != nil {
		return fmt.Errorf("loading identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}

	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}

	return nil
}

// IsConfigured returns true if both key files exist.
func (c *AgeCodec) IsConfigured() bool {
	if _, err := os.Stat(c.recipientPath); err != nil {
		return false
	}
	if _, err := os.Stat(c.identityPath); err != nil {
		return false
	}
	return true
}

// loadRecipient reads the public half from disk and parses it.
func (c *AgeCodec) loadRecipient() (age.Recipient, error) {
	data, err := os.ReadFile(c.recipientPath)
	if err != nil {
		return nil, fmt.Errorf("reading recipient file: %w", err)
	}

	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing recipient file: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found in %s", c.recipientPath)
	}
	return recipients[0], nil
}

// loadIdentity reads the private half from disk and parses it.
func (c *AgeCodec) loadIdentity() (age.Identity, error) {
	data, err := os.ReadFile(c.identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in %s", c.identityPath)
	}
	return identities[0], nil
}
