package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"

	apperrors "github.com/dbfwd/dbfwd/core/shared/errors"
)

// DefaultConfigFile is the config file path used when --config-file is not given.
const DefaultConfigFile = "db_fwd.toml"

// Built-in defaults, the lowest precedence tier.
const (
	DefaultLogLevel  = "info"
	DefaultLogFile   = "db_fwd.log"
	DefaultAPIMethod = "POST"
)

// GlobalSection mirrors the top-level [db_fwd] table.
type GlobalSection struct {
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	LogDBURL string `toml:"log_db_url"`
}

// QueryDefaults holds the default connection and API settings from the
// [queries] table, shared by every query unless overridden per query.
type QueryDefaults struct {
	DBURL       string `toml:"db_url"`
	APIURL      string `toml:"api_url"`
	APIMethod   string `toml:"api_method"`
	APIUsername string `toml:"api_username"`
	APIPassword string `toml:"api_password"`
}

// QueryDefinition mirrors one [queries.<name>] table: the SQL text plus
// optional overrides of the [queries] defaults.
type QueryDefinition struct {
	Query       string `toml:"query"`
	DBURL       string `toml:"db_url"`
	APIURL      string `toml:"api_url"`
	APIMethod   string `toml:"api_method"`
	APIUsername string `toml:"api_username"`
	APIPassword string `toml:"api_password"`
}

// File is the parsed configuration file. Read-only after Load.
type File struct {
	Global   GlobalSection
	Defaults QueryDefaults
	Queries  map[string]QueryDefinition
}

// rawFile matches the TOML document shape. The [queries] table mixes scalar
// defaults with per-query subtables, so the subtables are split out of the
// generic map after decoding.
type rawFile struct {
	DBFwd   GlobalSection  `toml:"db_fwd"`
	Queries map[string]any `toml:"queries"`
}

// Load reads and parses the TOML configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ConfigError(fmt.Sprintf("configuration file not found: %s", path), err)
	}

	var raw rawFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.ConfigError(fmt.Sprintf("malformed configuration file: %s", path), err)
	}

	file := &File{
		Global:  raw.DBFwd,
		Queries: make(map[string]QueryDefinition),
	}

	for key, value := range raw.Queries {
		sub, ok := value.(map[string]any)
		if !ok {
			// Scalar key at the [queries] level: a shared default.
			dest, known := map[string]*string{
				"db_url":       &file.Defaults.DBURL,
				"api_url":      &file.Defaults.APIURL,
				"api_method":   &file.Defaults.APIMethod,
				"api_username": &file.Defaults.APIUsername,
				"api_password": &file.Defaults.APIPassword,
			}[key]
			if !known {
				continue
			}
			s, err := asString("queries."+key, value)
			if err != nil {
				return nil, err
			}
			*dest = s
			continue
		}

		def, err := queryDefinition(key, sub)
		if err != nil {
			return nil, err
		}
		file.Queries[key] = def
	}

	return file, nil
}

func queryDefinition(name string, sub map[string]any) (QueryDefinition, error) {
	var def QueryDefinition
	fields := map[string]*string{
		"query":        &def.Query,
		"db_url":       &def.DBURL,
		"api_url":      &def.APIURL,
		"api_method":   &def.APIMethod,
		"api_username": &def.APIUsername,
		"api_password": &def.APIPassword,
	}
	for field, dest := range fields {
		value, present := sub[field]
		if !present {
			continue
		}
		s, err := asString(fmt.Sprintf("queries.%s.%s", name, field), value)
		if err != nil {
			return QueryDefinition{}, err
		}
		*dest = s
	}
	return def, nil
}

// CheckFilePermissions reports whether the configuration file is readable by
// anyone other than the owning user. The file carries database and API
// credentials.
func CheckFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if info.Mode().Perm()&0o077 != 0 {
		return fmt.Errorf("configuration file %s is accessible by group/other (mode %04o); it contains secrets and should be chmod 600", path, info.Mode().Perm())
	}
	return nil
}

func asString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperrors.ConfigError(
			fmt.Sprintf("configuration key '%s' must be a string, got %T", key, v), nil)
	}
	return s, nil
}
