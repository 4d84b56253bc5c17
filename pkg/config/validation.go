package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// bytesize accepts human sizes such as "50MB" or "1GiB".
	_ = v.RegisterValidation("bytesize", func(fl validator.FieldLevel) bool {
		_, err := humanize.ParseBytes(fl.Field().String())
		return err == nil
	})

	return v
}

// Validate checks cfg against its struct tags and the constraints that span
// several fields.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		return fmt.Errorf("metrics.port is required when metrics are enabled")
	}
	if cfg.Credentials.Username == "" && (cfg.Credentials.Password != "" || cfg.Credentials.NTHash != "") {
		return fmt.Errorf("credentials.username is required when a password or nt_hash is set")
	}
	if _, err := cfg.Credentials.AuthCredentials(); err != nil {
		return fmt.Errorf("credentials.nt_hash: %w", err)
	}
	if cfg.Database.Enabled {
		if err := cfg.Database.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	return nil
}

// formatValidationErrors renders validator errors as "field: rule" lines
// keyed by the struct path, e.g. "Config.Browse.MaxDepth: lte=64".
func formatValidationErrors(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		rule := e.Tag()
		if e.Param() != "" {
			rule += "=" + e.Param()
		}
		value := e.Value()
		if strings.Contains(e.Namespace(), ".Credentials.") {
			value = "<redacted>"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s (got %v)", e.Namespace(), rule, value))
	}
	return errors.New(strings.Join(msgs, "; "))
}
