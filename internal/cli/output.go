package cli

import "github.com/fatih/color"

// Colorized printers for plain (non-TUI) output.
var (
	// infoLine prints progress and status lines in green.
	infoLine = color.New(color.FgGreen).FprintfFunc()
	// warnLine prints warnings in bright magenta.
	warnLine = color.New(color.FgHiMagenta).FprintfFunc()
	// errorLine prints failures in red.
	errorLine = color.New(color.FgRed).FprintfFunc()
)
