package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbfwd/dbfwd/core/config"
	apperrors "github.com/dbfwd/dbfwd/core/shared/errors"
)

func resetState(t *testing.T) {
	t.Helper()
	prevConfig, prevLevel, prevFile := configFile, logLevel, logFile
	t.Cleanup(func() {
		configFile, logLevel, logFile = prevConfig, prevLevel, prevFile
		showVersion = false
		exitCode = apperrors.ExitOK
	})
	exitCode = apperrors.ExitOK
}

func TestRunForward_VersionFlag(t *testing.T) {
	resetState(t)
	showVersion = true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	require.NoError(t, runForward(rootCmd, nil))
	assert.Contains(t, out.String(), "dev")
	assert.Equal(t, apperrors.ExitOK, exitCode)
}

func TestRootCmd_RequiresQueryName(t *testing.T) {
	resetState(t)

	err := rootCmd.Args(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")

	assert.NoError(t, rootCmd.Args(rootCmd, []string{"orders"}))

	// --version runs without a query name.
	showVersion = true
	assert.NoError(t, rootCmd.Args(rootCmd, nil))
}

func TestRunForward_MissingConfigFile(t *testing.T) {
	resetState(t)
	t.Chdir(t.TempDir())
	configFile = "absent.toml"

	require.NoError(t, runForward(rootCmd, []string{"orders"}))
	assert.Equal(t, apperrors.ExitConfig, exitCode)

	// The failure is still recorded in the default log file.
	data, err := os.ReadFile(config.DefaultLogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "configuration file not found")
}

func TestRunForward_ParameterMismatchFailsBeforeExecution(t *testing.T) {
	resetState(t)
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile("db_fwd.toml", []byte(`
[queries]
db_url = "postgres://localhost/main"
api_url = "https://api.example.com/orders"

[queries.orders]
query = "SELECT payload FROM orders WHERE a = %s AND b = %s"
`), 0o600))
	configFile = "db_fwd.toml"

	require.NoError(t, runForward(rootCmd, []string{"orders", "only-one"}))
	assert.Equal(t, apperrors.ExitConfig, exitCode)

	data, err := os.ReadFile(config.DefaultLogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "parameter count mismatch")
}
