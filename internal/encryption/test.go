package encryption

import (
	"bytes"
	"fmt"
	"io"
)

// testHeader is prepended to data by TestCodec to make encrypted output
// clearly different from plaintext while remaining deterministic and reversible.
var testHeader = []byte("GALENC\x00\x00")

// TestCodec is a simple, deterministic codec for testing. It prepends a
// fixed 8-byte header during encryption and strips it during decryption, so
// encrypted output differs from plaintext without requiring any crypto.
type TestCodec struct {
	setupCalled bool
}

var _ Codec = (*TestCodec)(nil)

// NewTestCodec creates a new TestCodec.
func NewTestCodec() *TestCodec {
	return &TestCodec{}
}

func (c *TestCodec) Setup() error {
	c.setupCalled = true
	return nil
}

func (c *TestCodec) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (c *TestCodec) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (c *TestCodec) IsConfigured() bool {
	return true
}
