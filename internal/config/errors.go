package config

import "errors"

// ErrInvalidConfig marks configuration that failed validation
var ErrInvalidConfig = errors.New("invalid config")
