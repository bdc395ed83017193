package encryption

import (
	"fmt"

	"gallery-go/internal/config"
)

// NewCodecFromConfig creates a Codec based on the configuration type.
// Type "none" (the default) returns nil: the cache stores plaintext.
func NewCodecFromConfig(cfg config.EncryptionConfig) (Codec, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeCodec(cfg), nil
	case "test":
		return NewTestCodec(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
