package api

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fortishield/fortishield-qa-framework/internal/common/envtemplate"
)

// Connection defaults of the management service.
const (
	DefaultUser            = "fortishield"
	DefaultPassword        = "fortishield"
	DefaultPort            = 55000
	DefaultAddress         = "localhost"
	DefaultProtocol        = "https"
	DefaultTokenExpiration = 900
)

// Config holds the connection parameters of a Session.
type Config struct {
	User     string `json:"user" yaml:"user" toml:"user" validate:"required"`
	Password string `json:"password" yaml:"password" toml:"password"`
	Address  string `json:"address" yaml:"address" toml:"address" validate:"required"`
	Port     int    `json:"port" yaml:"port" toml:"port" validate:"min=1,max=65535"`
	Protocol string `json:"protocol" yaml:"protocol" toml:"protocol" validate:"oneof=http https"`
	// AutoAuth mints a token while the Session is constructed.
	AutoAuth bool `json:"auto_auth" yaml:"auto_auth" toml:"auto_auth"`
	// TokenExpiration in seconds. A value other than DefaultTokenExpiration is pushed to
	// the service at construction.
	TokenExpiration int `json:"token_expiration" yaml:"token_expiration" toml:"token_expiration" validate:"gt=0"`
	// Verify enables TLS certificate verification.
	Verify bool `json:"verify" yaml:"verify" toml:"verify"`
}

// DefaultConfig returns the service defaults with eager authentication enabled.
func DefaultConfig() Config {
	return Config{
		User:            DefaultUser,
		Password:        DefaultPassword,
		Address:         DefaultAddress,
		Port:            DefaultPort,
		Protocol:        DefaultProtocol,
		AutoAuth:        true,
		TokenExpiration: DefaultTokenExpiration,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return ErrInvalidConfig.MsgErr("invalid configuration: "+err.Error(), err)
	}
	return nil
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) file on top of DefaultConfig.
// {{ .ENV.VAR }} placeholders are expanded first, using the environment and a .env file
// next to the configuration file.
func LoadConfig(file string) (*Config, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config file")
	}

	expanded, err := envtemplate.Expand(raw, filepath.Join(filepath.Dir(file), ".env"))
	if err != nil {
		return nil, errors.Wrap(err, "unable to expand config file")
	}

	c := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(expanded))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "unable to parse config file")
		}
	case ".toml":
		md, err := toml.Decode(string(expanded), &c)
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse config file")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("unknown config keys: %v", undecoded)
		}
	default:
		return nil, errors.Errorf("unsupported config file extension %q", ext)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// WriteConfig writes c as YAML, creating parent directories as needed.
func (c *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return errors.Wrap(err, "unable to create config directory")
	}
	out, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "unable to generate configuration")
	}
	if err := os.WriteFile(file, out, 0600); err != nil {
		return errors.Wrap(err, "unable to write config file")
	}
	return nil
}
