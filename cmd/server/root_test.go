package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionSkipsConfig(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "timebank dev")
}

func TestAdminCommandsNeedPostgres(t *testing.T) {
	for _, args := range [][]string{{"sweep"}, {"migrate"}, {"withdrawal", "complete", "42"}} {
		t.Run(args[0], func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv("STORAGE_DRIVER", "memory")
			t.Setenv("LOG_FILE", "")

			root := newRootCmd()
			root.SetArgs(args)
			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "STORAGE_DRIVER=postgres")
		})
	}
}

func TestWithdrawalRejectsBadID(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_FILE", "")

	root := newRootCmd()
	root.SetArgs([]string{"withdrawal", "fail", "abc"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc")
}
