package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameops/steamctl/internal/steamcmd"
)

func TestInstallFlagsToOptions(t *testing.T) {
	tests := []struct {
		name    string
		flags   installFlags
		wantErr error
		check   func(t *testing.T, opts steamcmd.InstallOptions)
	}{
		{
			name:  "app only",
			flags: installFlags{app: "740", dir: "/srv/csgo"},
			check: func(t *testing.T, opts steamcmd.InstallOptions) {
				assert.Equal(t, int64(740), opts.AppID)
				assert.Zero(t, opts.WorkshopID)
				assert.Equal(t, "/srv/csgo", opts.Dir)
			},
		},
		{
			name:  "app with workshop item",
			flags: installFlags{app: "107410", workshop: "450814997", dir: "/srv/arma3"},
			check: func(t *testing.T, opts steamcmd.InstallOptions) {
				assert.Equal(t, int64(107410), opts.AppID)
				assert.Equal(t, int64(450814997), opts.WorkshopID)
			},
		},
		{
			name:  "credentials and platform",
			flags: installFlags{app: "740", dir: "/srv/csgo", username: "alice", password: "hunter2", platform: "windows"},
			check: func(t *testing.T, opts steamcmd.InstallOptions) {
				assert.Equal(t, "alice", opts.Username)
				assert.Equal(t, steamcmd.PlatformWindows, opts.Platform)
			},
		},
		{
			name:    "non numeric app id",
			flags:   installFlags{app: "counterstrike", dir: "/srv/csgo"},
			wantErr: steamcmd.ErrInvalidAppID,
		},
		{
			name:    "negative app id",
			flags:   installFlags{app: "-1", dir: "/srv/csgo"},
			wantErr: steamcmd.ErrInvalidAppID,
		},
		{
			name:    "bad workshop id",
			flags:   installFlags{app: "740", workshop: "0", dir: "/srv/csgo"},
			wantErr: steamcmd.ErrInvalidWorkshopID,
		},
		{
			name:    "unknown platform",
			flags:   installFlags{app: "740", dir: "/srv/csgo", platform: "solaris"},
			wantErr: steamcmd.ErrInvalidPlatform,
		},
		{
			name:    "password without username",
			flags:   installFlags{app: "740", dir: "/srv/csgo", password: "hunter2"},
			wantErr: steamcmd.ErrMissingUsername,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.flags.toOptions()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestWrapInstallError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		require.NoError(t, wrapInstallError(nil))
	})

	t.Run("exit error stays unwrappable", func(t *testing.T) {
		orig := &steamcmd.ExitError{ExitCode: 8}
		wrapped := wrapInstallError(orig)
		require.Error(t, wrapped)

		var exitErr *steamcmd.ExitError
		require.True(t, errors.As(wrapped, &exitErr))
		assert.Equal(t, 8, exitErr.ExitCode)
		assert.Contains(t, wrapped.Error(), "install failed")
	})
}

func TestInstallTitle(t *testing.T) {
	assert.Equal(t, "Installing app 740",
		installTitle(steamcmd.InstallOptions{AppID: 740}))
	assert.Equal(t, "Installing workshop item 450814997 for app 107410",
		installTitle(steamcmd.InstallOptions{AppID: 107410, WorkshopID: 450814997}))
}
