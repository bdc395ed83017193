package encryption

import (
	"bytes"
	"testing"
)

func TestTestCodec_Setup(t *testing.T) {
	t.Parallel()
	c := NewTestCodec()
	if err := c.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !c.setupCalled {
		t.Error("Setup() did not record that it was called")
	}
}

func TestTestCodec_IsConfigured(t *testing.T) {
	t.Parallel()
	c := NewTestCodec()
	if !c.IsConfigured() {
		t.Error("IsConfigured() = false, want true")
	}
}

func TestTestCodec_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple text", input: []byte("hello world")},
		{name: "empty", input: []byte{}},
		{name: "binary data", input: []byte{0x00, 0xff, 0x01, 0xfe}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTestCodec()

			var cipher bytes.Buffer
			if err := c.Encrypt(bytes.NewReader(tt.input), &cipher); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if cipher.Len() != len(tt.input)+len(testHeader) {
				t.Errorf("ciphertext length = %d, want %d", cipher.Len(), len(tt.input)+len(testHeader))
			}
			if !bytes.HasPrefix(cipher.Bytes(), testHeader) {
				t.Error("ciphertext missing the test header")
			}

			var plain bytes.Buffer
			if err := c.Decrypt(bytes.NewReader(cipher.Bytes()), &plain); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plain.Bytes(), tt.input) {
				t.Errorf("Decrypt() = %q, want %q", plain.Bytes(), tt.input)
			}
		})
	}
}

func TestTestCodec_Decrypt_RejectsMissingHeader(t *testing.T) {
	t.Parallel()
	c := NewTestCodec()

	var out bytes.Buffer
	if err := c.Decrypt(bytes.NewReader([]byte("plaintext without header")), &out); err == nil {
		t.Error("Decrypt(no header) error = nil, want error")
	}
}
