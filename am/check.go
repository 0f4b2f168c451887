package am

import (
	"github.com/BurntSushi/toml"

	"github.com/soheilade/atomic-server/errors"
)

// FileCheck is the result of checking a config file against Config.
type FileCheck struct {
	Path        string   `json:"path" yaml:"path"`
	UnknownKeys []string `json:"unknown_keys,omitempty" yaml:"unknown_keys,omitempty"`
	Config      *Config  `json:"-" yaml:"-"`
}

// CheckFile decodes path strictly. Type mismatches are errors; keys that do
// not map to any setting are reported in UnknownKeys, since viper would
// silently ignore them. The decoded config is validated on top of defaults.
func CheckFile(path string) (*FileCheck, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, errors.WithDetail(errors.Wrapf(err, "failed to parse %s", path), perr.ErrorWithPosition())
		}
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}

	check := &FileCheck{Path: path, Config: cfg}
	for _, key := range md.Undecoded() {
		check.UnknownKeys = append(check.UnknownKeys, key.String())
	}

	if err := cfg.Validate(); err != nil {
		return check, errors.Wrapf(err, "invalid config in %s", path)
	}
	return check, nil
}
