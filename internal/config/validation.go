package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for completeness and consistency.
// Struct tags cover the per-field rules; the checks below cover rules that
// span fields or need a real lookup (storage backend requirements, timezone).
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Storage.Backend {
	case "google":
		if c.Storage.CredentialsFile == "" {
			return fmt.Errorf("storage.credentials_file is required for the google backend")
		}
		if c.Storage.SheetID == "" {
			return fmt.Errorf("storage.sheet_id is required for the google backend")
		}
	case "xlsx":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the xlsx backend")
		}
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	return nil
}
