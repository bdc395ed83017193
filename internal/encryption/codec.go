package encryption

import "io"

// Codec encrypts and decrypts disk-cache entries at rest. The cache holds
// private album metadata (unpublished albums, tags, titles) in a local
// database; the codec keeps that unreadable without the key files.
type Codec interface {
	// Setup performs one-time key generation. Called during
	// `gallery config init --encrypt`.
	Setup() error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt decrypts data read from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error

	// IsConfigured returns true if the key material exists.
	IsConfigured() bool
}
