package encryption

import (
	"fmt"

	"complib/internal/config"
	"complib/internal/library"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
func NewSealerFromConfig(cfg config.SealingConfig) (library.Sealer, error) {
	switch cfg.Type {
	case "age", "":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age sealing requires public_key_path and private_key_path")
		}
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown sealing type: %q", cfg.Type)
	}
}
