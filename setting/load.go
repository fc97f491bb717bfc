package setting

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultFile is read when Load is given no path.
const DefaultFile = "observability.json"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "HEALTHOPS"

// Load reads the settings document at path and fills in application names.
// A missing file returns ErrNotFound.
func Load(path string) (*ObservabilitySetting, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, path, err)
	}
	return decode(v)
}

// Read parses a JSON settings document from r.
func Read(r io.Reader) (*ObservabilitySetting, error) {
	v := newViper()
	v.SetConfigType("json")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*ObservabilitySetting, error) {
	s := new(ObservabilitySetting)
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	s.SetApplicationNames()
	return s, nil
}
