package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gameops/steamctl/internal/cli"
	"github.com/gameops/steamctl/internal/steamcmd"
	"github.com/gameops/steamctl/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.NotNil(t, root)
		assert.NotEmpty(t, root.Use)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "steamcmd exit code propagates",
			err:  &steamcmd.ExitError{ExitCode: 8},
			want: 8,
		},
		{
			name: "wrapped exit code propagates",
			err:  fmt.Errorf("install failed: %w", &steamcmd.ExitError{ExitCode: 42}),
			want: 42,
		},
		{
			name: "generic error exits 1",
			err:  errors.New("boom"),
			want: 1,
		},
		{
			name: "cancelled exits 1",
			err:  cli.ErrCancelled,
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
