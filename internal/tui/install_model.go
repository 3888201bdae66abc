// Package tui contains the Bubble Tea models steamctl uses for interactive
// terminal output. The install view tracks a SteamCMD run: phase, percent
// complete, byte counters, and the trailing output lines.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gameops/steamctl/internal/steamcmd"
)

// InstallState represents the current state of the install TUI.
type InstallState int

const (
	// InstallStateRunning indicates the install is in progress.
	InstallStateRunning InstallState = iota
	// InstallStateDone indicates the install finished successfully.
	InstallStateDone
	// InstallStateFailed indicates the install finished with an error.
	InstallStateFailed
	// InstallStateQuitting indicates the user cancelled the view.
	InstallStateQuitting
)

// Messages forwarded into the model by the command driving the install.
type (
	// StatusMsg updates the one-line status above the progress bar.
	StatusMsg string
	// ProgressMsg carries a parsed SteamCMD progress report.
	ProgressMsg steamcmd.Progress
	// OutputMsg carries one raw SteamCMD output line.
	OutputMsg string
	// DoneMsg signals the end of the run. Err is nil on success.
	DoneMsg struct{ Err error }
)

// Layout constants.
const (
	installDefaultWidth = 60
	maxTailLines        = 6
	borderPadding       = 2
	truncateSuffix      = "..."
)

var bytePrinter = message.NewPrinter(language.English)

// InstallModel is the Bubble Tea model for a SteamCMD install run.
type InstallModel struct {
	title  string
	status string
	bar    progress.Model

	percent         float64
	phase           string
	bytesDownloaded int64
	totalBytes      int64

	tail []string

	state InstallState
	err   error

	width int
}

// NewInstallModel creates an install view with the given title, typically
// naming the app or workshop item being installed.
func NewInstallModel(title string) *InstallModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = installDefaultWidth

	return &InstallModel{
		title:  title,
		status: "Preparing...",
		bar:    bar,
		state:  InstallStateRunning,
		width:  installDefaultWidth,
	}
}

// Init initializes the model.
func (m *InstallModel) Init() tea.Cmd {
	return nil
}

// State returns the model's terminal state after the program exits.
func (m *InstallModel) State() InstallState {
	return m.state
}

// Err returns the run error, nil unless the state is InstallStateFailed.
func (m *InstallModel) Err() error {
	return m.err
}

// Update handles messages and updates the model state.
func (m *InstallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - borderPadding*2
		if barWidth > installDefaultWidth {
			barWidth = installDefaultWidth
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.state = InstallStateQuitting
			return m, tea.Quit
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				m.state = InstallStateQuitting
				return m, tea.Quit
			}
		}
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case ProgressMsg:
		m.phase = msg.Phase
		m.percent = float64(msg.Percent) / 100.0
		m.bytesDownloaded = msg.BytesDownloaded
		m.totalBytes = msg.TotalBytes
		return m, nil

	case OutputMsg:
		m.appendTail(string(msg))
		return m, nil

	case DoneMsg:
		if msg.Err != nil {
			m.state = InstallStateFailed
			m.err = msg.Err
		} else {
			m.state = InstallStateDone
			m.percent = 1.0
		}
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current view.
func (m *InstallModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(m.title))
	b.WriteString("\n\n")

	switch m.state {
	case InstallStateDone:
		b.WriteString(SuccessStyle.Render("✓ Install complete"))
		b.WriteString("\n")
		return b.String()
	case InstallStateFailed:
		b.WriteString(ErrorStyle.Render("✗ Install failed"))
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(MutedStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		return b.String()
	case InstallStateQuitting:
		b.WriteString(MutedStyle.Render("Cancelled."))
		b.WriteString("\n")
		return b.String()
	case InstallStateRunning:
	}

	b.WriteString(LabelStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.percent))
	b.WriteString("\n")

	if m.totalBytes > 0 {
		b.WriteString(MutedStyle.Render(FormatBytesProgress(m.bytesDownloaded, m.totalBytes)))
		b.WriteString("\n")
	}

	if len(m.tail) > 0 {
		b.WriteString("\n")
		for _, line := range m.tail {
			b.WriteString(MutedStyle.Render(truncateLine(line, m.width)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("Press q to cancel"))
	return lipgloss.NewStyle().Padding(0, borderPadding).Render(b.String())
}

// statusLine prefers the parsed SteamCMD phase over the driver's status.
func (m *InstallModel) statusLine() string {
	if m.phase != "" {
		return m.phase
	}
	return m.status
}

// appendTail keeps the last maxTailLines output lines for display.
func (m *InstallModel) appendTail(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	m.tail = append(m.tail, line)
	if len(m.tail) > maxTailLines {
		m.tail = m.tail[len(m.tail)-maxTailLines:]
	}
}

func truncateLine(line string, width int) string {
	limit := width - borderPadding*2
	if limit <= len(truncateSuffix) || len(line) <= limit {
		return line
	}
	return line[:limit-len(truncateSuffix)] + truncateSuffix
}

// FormatBytesProgress renders a "12,345,678 / 98,765,432 bytes" counter with
// thousands separators.
func FormatBytesProgress(downloaded, total int64) string {
	return bytePrinter.Sprintf("%d / %d bytes", downloaded, total)
}

// FormatBytes renders a single byte count with thousands separators.
func FormatBytes(n int64) string {
	return bytePrinter.Sprintf("%d bytes", n)
}

