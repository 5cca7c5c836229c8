package config

import "github.com/kotleni/cats/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errReadEnvFile = &apperr.Error{
		Message: "reading env file failed",
	}

	errInvalidDuration = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "%s must be between %v and %v",
	}

	errInvalidIconCount = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "icon count must be at least 1, got %d",
	}

	errInvalidDriver = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "unknown store driver %q (must be bolt or sqlite)",
	}

	errInvalidLogLevel = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "unknown log level %q",
	}

	errInvalidAddress = &apperr.Error{
		Kind:    apperr.Validation,
		Message: "daemon address %q must be in host:port form",
	}
)
