package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdEnvFlags(t *testing.T) {
	isDevEnv, isTestEnv = false, false
	cmd := createRootCmd()

	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--dev", "--test"}))

	assert.True(t, isDevEnv)
	assert.True(t, isTestEnv, "--test must switch the mail client into test mode")
}
