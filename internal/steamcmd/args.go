package steamcmd

import "strconv"

// SteamCMD command tokens. Each "+directive" and its values are separate
// argv entries; no shell is involved, so values are never quoted.
const (
	tokenForcePlatform    = "+@sSteamCmdForcePlatformType"
	tokenNoPasswordPrompt = "+@NoPromptForPassword"
	tokenShutdownOnError  = "+@ShutdownOnFailedCommand"
	tokenGuardCode        = "+set_steam_guard_code"
	tokenLogin            = "+login"
	tokenForceInstallDir  = "+force_install_dir"
	tokenAppUpdate        = "+app_update"
	tokenWorkshopItem     = "+workshop_download_item"
	tokenQuit             = "+quit"

	loginAnonymous = "anonymous"
	argValidate    = "validate"
	argEnabled     = "1"
)

// BuildArguments maps options to the ordered SteamCMD argv. It is pure and
// total: any options value, including the zero value, yields a valid token
// list. It performs no validation; call InstallOptions.Validate first.
//
// The platform-forcing token, when present, is always first; the quit token
// is always last.
func BuildArguments(opts InstallOptions) []string {
	args := make([]string, 0, 16)

	if opts.Platform != "" {
		args = append(args, tokenForcePlatform, string(opts.Platform))
	}

	args = append(args, tokenNoPasswordPrompt, argEnabled)
	args = append(args, tokenShutdownOnError, argEnabled)

	// The guard code must be staged before the login directive consumes it.
	if opts.GuardCode != "" {
		args = append(args, tokenGuardCode, opts.GuardCode)
	}

	switch {
	case opts.Username != "" && opts.Password != "":
		args = append(args, tokenLogin, opts.Username, opts.Password)
	case opts.Username != "":
		args = append(args, tokenLogin, opts.Username)
	default:
		args = append(args, tokenLogin, loginAnonymous)
	}

	// The install directory must precede any app or workshop directive.
	if opts.Dir != "" {
		args = append(args, tokenForceInstallDir, opts.Dir)
	}

	switch {
	case opts.AppID != 0 && opts.WorkshopID != 0:
		args = append(args, tokenWorkshopItem,
			strconv.FormatInt(opts.AppID, 10),
			strconv.FormatInt(opts.WorkshopID, 10))
	case opts.AppID != 0:
		args = append(args, tokenAppUpdate,
			strconv.FormatInt(opts.AppID, 10), argValidate)
	}

	return append(args, tokenQuit)
}
