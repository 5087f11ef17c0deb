package runner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
)

func TestValidateOptions(t *testing.T) {
	runner := &Runner{options: &clients.Options{Silent: true, Verbose: true}}
	require.Error(t, runner.validateOptions())

	runner = &Runner{options: &clients.Options{Debug: true}}
	require.Nil(t, runner.validateOptions())
}

func TestRunnerExecute(t *testing.T) {
	options := &clients.Options{
		Directory: t.TempDir(),
		Silent:    true,
	}
	runner, err := New(options)
	require.Nil(t, err)
	require.NotNil(t, runner)

	require.Nil(t, runner.Execute())
	require.Nil(t, runner.Close())
}
