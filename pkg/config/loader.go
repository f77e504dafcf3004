package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
)

const (
	// EnvPrefix prefixes every environment override
	EnvPrefix = "DRIVEPOOL_"

	// EnvConfigDir overrides the directory holding the user config file
	EnvConfigDir = "DRIVEPOOL_CONFIG_DIR"

	// ProjectConfigFile is looked up in the working directory
	ProjectConfigFile = "drivepool.toml"

	// UserConfigFile is looked up in the user config directory
	UserConfigFile = "config.toml"
)

// LoadOptions controls where configuration layers come from
type LoadOptions struct {
	// ConfigFile is an explicit project config; it must exist when set
	ConfigFile string

	// WorkDir is searched for drivepool.toml when ConfigFile is empty
	WorkDir string

	// UserConfigDir overrides the user config directory
	UserConfigDir string

	// Overrides are dotted keys (e.g. "placement.order") applied last,
	// typically from command line flags
	Overrides map[string]interface{}
}

// UserConfigDir returns the directory holding the user config file
func UserConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, "drivepool")
}

// Load resolves the configuration: embedded defaults, then the user config
// file, then the project config file, then DRIVEPOOL_ environment variables,
// then explicit overrides.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config
	userDir := opts.UserConfigDir
	if userDir == "" {
		userDir = UserConfigDir()
	}
	userPath := filepath.Join(userDir, UserConfigFile)
	if _, err := os.Stat(userPath); err == nil {
		if err := k.Load(file.Provider(userPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load user config from %s", userPath)
		}
		logger.Debug().Str("path", userPath).Msg("Loaded user config")
	}

	// 3. Project config
	projectPath := opts.ConfigFile
	required := projectPath != ""
	if !required {
		projectPath = filepath.Join(opts.WorkDir, ProjectConfigFile)
	}
	if _, err := os.Stat(projectPath); err == nil {
		if err := k.Load(file.Provider(projectPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", projectPath)
		}
		logger.Debug().Str("path", projectPath).Msg("Loaded project config")
	} else if required {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "config file %s", projectPath)
	}

	// 4. Env vars: DRIVEPOOL_PLACEMENT_ORDER -> placement.order
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 5. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg, err := decode(k)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults with no other layers applied
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	cfg, err := decode(k)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	return cfg
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				byteSizeHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps DRIVEPOOL_SECTION_SOME_KEY to section.some_key. Only the first
// underscore separates the section so multi-word keys survive.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func byteSizeHookFunc() mapstructure.DecodeHookFunc {
	sizeType := reflect.TypeOf(ByteSize(0))
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != sizeType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseSize(v)
		case float64:
			return ByteSize(v), nil
		}
		return data, nil
	}
}
