package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/fritzpowerline/internal/config"
	"github.com/muurk/fritzpowerline/internal/homeplug"
	"github.com/muurk/fritzpowerline/internal/tr064"
	"github.com/muurk/fritzpowerline/internal/ui"
	"github.com/muurk/fritzpowerline/internal/urls"
)

var (
	activeStyle  = ui.TableCellStyle.Foreground(ui.SuccessColor)
	idleStyle    = ui.TableCellStyle.Foreground(ui.MutedColor)
	pendingStyle = ui.TableCellStyle.Foreground(ui.WarningColor)
)

// Device table columns
const (
	colIndex = iota
	colName
	colMAC
	colModel
	colActive
	colUpdate
	colLastUpdate
)

// printDevices writes devices in the configured output format
func (c *cli) printDevices(out io.Writer, devices []homeplug.DeviceInfo) error {
	switch c.settings.Format {
	case config.FormatJSON:
		return writeJSON(out, devices)
	case config.FormatCompact:
		_, err := fmt.Fprint(out, homeplug.FormatCompact(devices))
		return err
	default:
		_, err := fmt.Fprintln(out, deviceTable(devices))
		return err
	}
}

// deviceTable renders devices as a styled table
func deviceTable(devices []homeplug.DeviceInfo) string {
	if len(devices) == 0 {
		return ui.MutedStyle.Render("No powerline devices registered.")
	}

	tbl := ui.NewTable("#", "Name", "MAC", "Model", "Active", "Update", "Last update")
	for _, d := range devices {
		update := "-"
		if d.UpdateAvailable {
			update = "available"
		}
		lastUpdate := "failed"
		if d.UpdateSuccess {
			lastUpdate = "ok"
		}
		tbl.AddRow(
			strconv.Itoa(d.Index),
			d.Name,
			d.MAC,
			d.Model,
			homeplug.YesNo(d.Active),
			update,
			lastUpdate,
		)
	}

	tbl.Styler = func(_, col int, value string) *lipgloss.Style {
		switch {
		case col == colActive && value == "yes":
			return &activeStyle
		case col == colActive:
			return &idleStyle
		case col == colUpdate && value == "available":
			return &pendingStyle
		}
		return nil
	}

	return tbl.Render()
}

// printRecord writes a raw device entry in the configured output format
func (c *cli) printRecord(out io.Writer, r homeplug.Record) error {
	switch c.settings.Format {
	case config.FormatJSON:
		return writeJSON(out, r)
	case config.FormatCompact:
		_, err := fmt.Fprint(out, homeplug.FormatRecord(r))
		return err
	default:
		tbl := ui.NewTable("Field", "Value")
		for _, k := range r.Keys() {
			tbl.AddRow(k, r[k])
		}
		_, err := fmt.Fprintln(out, tbl.Render())
		return err
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// renderError renders err as a failure box with troubleshooting tips
func renderError(err error) string {
	title := "Command failed"
	var hints []string

	var verrs config.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		title = "Invalid configuration"
		hints = append(hints, "Check the flags and the config file (fritzpowerline config path)")
	case tr064.IsAuth(err):
		title = "Authentication failed"
	case tr064.IsTransport(err):
		title = "Router unreachable"
	case tr064.IsServiceNotFound(err):
		title = "Powerline service not available"
	case tr064.IsNotFound(err):
		title = "Device not found"
	}

	hints = append(hints, tr064.TroubleshootingHint(err)...)
	switch {
	case tr064.IsAuth(err), tr064.IsTransport(err):
		hints = append(hints, "See "+urls.TR064FirstSteps)
	case tr064.IsServiceNotFound(err):
		hints = append(hints, "See "+urls.HomeplugService)
	}

	return ui.NewFailureResult(title, err, hints).Render()
}
