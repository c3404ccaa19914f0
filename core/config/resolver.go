package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/dbfwd/dbfwd/core/shared/errors"
)

// Environment variables consumed as the fallback tier between the config
// file's [queries] defaults and the built-in defaults.
const (
	EnvDBURL       = "DB_FWD_DB_URL"
	EnvAPIUsername = "DB_FWD_API_USERNAME"
	EnvAPIPassword = "DB_FWD_API_PASSWORD"
)

// Options carries the CLI inputs to resolution. Empty strings mean the flag
// was not given.
type Options struct {
	ConfigFile  string
	LogLevel    string
	LogFile     string
	QueryName   string
	QueryParams []string
}

// ResolvedSettings is the fully merged configuration for one invocation.
// Immutable after Resolve returns it.
type ResolvedSettings struct {
	LogLevel    string `validate:"oneof=none info debug"`
	LogFile     string `validate:"required"`
	LogDBURL    string
	DBURL       string `validate:"required"`
	APIURL      string `validate:"required,url"`
	APIMethod   string `validate:"oneof=POST PUT"`
	APIUsername string
	APIPassword string
	QueryText   string `validate:"required"`
	QueryParams []string
}

var validate = validator.New()

// Resolve merges CLI flags, the configuration file, environment variables and
// built-in defaults into one settings value for queryName.
//
// Precedence per setting, highest first: CLI flag, [queries.<name>] value,
// [queries] value, environment variable, [db_fwd] value, built-in default.
// Environment variables fill gaps only when the config file is silent; they
// always beat built-in defaults.
func Resolve(file *File, opts Options) (*ResolvedSettings, error) {
	def, ok := file.Queries[opts.QueryName]
	if !ok {
		return nil, apperrors.ConfigError(fmt.Sprintf("query '%s' not found in configuration", opts.QueryName), nil)
	}
	if def.Query == "" {
		return nil, apperrors.ConfigError(fmt.Sprintf("no query defined for '%s'", opts.QueryName), nil)
	}

	settings := &ResolvedSettings{
		LogLevel:    firstOf(opts.LogLevel, file.Global.LogLevel, DefaultLogLevel),
		LogFile:     firstOf(opts.LogFile, file.Global.LogFile, DefaultLogFile),
		LogDBURL:    file.Global.LogDBURL,
		DBURL:       firstOf(def.DBURL, file.Defaults.DBURL, os.Getenv(EnvDBURL)),
		APIURL:      firstOf(def.APIURL, file.Defaults.APIURL),
		APIMethod:   firstOf(def.APIMethod, file.Defaults.APIMethod, DefaultAPIMethod),
		APIUsername: firstOf(def.APIUsername, file.Defaults.APIUsername, os.Getenv(EnvAPIUsername)),
		APIPassword: firstOf(def.APIPassword, file.Defaults.APIPassword, os.Getenv(EnvAPIPassword)),
		QueryText:   def.Query,
		QueryParams: opts.QueryParams,
	}
	settings.LogLevel = strings.ToLower(settings.LogLevel)
	settings.APIMethod = strings.ToUpper(settings.APIMethod)

	if settings.DBURL == "" {
		return nil, apperrors.ConfigError(fmt.Sprintf("database URL not configured for query '%s'", opts.QueryName), nil)
	}
	if settings.APIURL == "" {
		return nil, apperrors.ConfigError(fmt.Sprintf("API URL not configured for query '%s'", opts.QueryName), nil)
	}

	if got, want := len(opts.QueryParams), PlaceholderCount(def.Query); got != want {
		return nil, apperrors.ConfigError(
			fmt.Sprintf("parameter count mismatch for query '%s': %d placeholder(s), %d parameter(s)", opts.QueryName, want, got), nil)
	}

	if err := validate.Struct(settings); err != nil {
		return nil, apperrors.ConfigError("invalid resolved settings", err)
	}

	return settings, nil
}

// PlaceholderCount returns the number of positional %s placeholders in a
// query. A doubled %% escapes the percent sign and is not counted.
func PlaceholderCount(query string) int {
	count := 0
	for i := 0; i+1 < len(query); i++ {
		if query[i] != '%' {
			continue
		}
		if query[i+1] == '%' {
			i++
			continue
		}
		if query[i+1] == 's' {
			count++
			i++
		}
	}
	return count
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
