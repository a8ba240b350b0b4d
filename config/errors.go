package config

import "errors"

var (
	// ErrUnknownSetting is returned for names outside the settings registry.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrValidation is returned by Set when a value's type does not match
	// the setting's declared type.
	ErrValidation = errors.New("validation error")

	// ErrAlreadyExists is returned by CreateConfigFile when the config file
	// is present and overwrite was not requested.
	ErrAlreadyExists = errors.New("config file already exists")
)
