package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Confirmer shows dangerous-operation warnings and reads the answer
type Confirmer struct {
	In    io.Reader
	Out   io.Writer
	Width int
}

// NewConfirmer creates a Confirmer on stdin and stdout
func NewConfirmer() *Confirmer {
	return &Confirmer{In: os.Stdin, Out: os.Stdout, Width: GetTerminalWidth()}
}

// ConfirmDangerousOperation displays a warning box and prompts the user to type
// phrase to proceed. Returns true if the user confirmed, false otherwise.
func (c *Confirmer) ConfirmDangerousOperation(title string, warnings []string, phrase string) bool {
	width := c.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)), ""}

	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	_, _ = fmt.Fprintln(c.Out, box)
	_, _ = fmt.Fprintln(c.Out)

	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	_, _ = fmt.Fprint(c.Out, promptStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", phrase)))

	input, err := bufio.NewReader(c.In).ReadString('\n')
	_, _ = fmt.Fprintln(c.Out)
	if err != nil && input == "" {
		return false
	}

	if strings.EqualFold(strings.TrimSpace(input), phrase) {
		return true
	}

	_, _ = fmt.Fprintln(c.Out, MutedStyle.Render("  Operation cancelled."))
	_, _ = fmt.Fprintln(c.Out)
	return false
}

// ConfirmDeviceUpdate asks before triggering a powerline firmware update
func (c *Confirmer) ConfirmDeviceUpdate(mac, name string) bool {
	device := mac
	if name != "" {
		device = fmt.Sprintf("%s (%s)", name, mac)
	}
	return c.ConfirmDangerousOperation(
		"FIRMWARE UPDATE",
		[]string{
			"This starts a firmware update on " + device,
			"The adapter drops off the powerline network while it updates",
			"Do not unplug the adapter until it is back online",
			"The command returns as soon as the router accepted the request",
		},
		"update",
	)
}

// PromptPassword reads a password from the terminal without echo
func PromptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot prompt for password: stdin is not a terminal")
	}

	_, _ = fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
