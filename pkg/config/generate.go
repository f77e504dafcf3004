package config

import (
	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/drivepool/pkg/errors"
)

// Render serializes a configuration as TOML, for `genconfig --effective`
// and for writing a starting config file.
func Render(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(data), nil
}
