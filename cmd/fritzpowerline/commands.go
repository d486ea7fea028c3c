package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/fritzpowerline/internal/config"
	"github.com/muurk/fritzpowerline/internal/homeplug"
	"github.com/muurk/fritzpowerline/internal/logging"
	"github.com/muurk/fritzpowerline/internal/tr064"
	"github.com/muurk/fritzpowerline/internal/ui"
	"github.com/muurk/fritzpowerline/internal/version"
)

var (
	// errCancelled is returned when the user declines a confirmation
	errCancelled = errors.New("operation cancelled")

	errMACRequired = errors.New("a MAC address is required when stdin is not a terminal")
)

// cli holds flag values and the settings resolved from them
type cli struct {
	// Connection flags
	address     string
	port        int
	user        string
	password    string
	askPassword bool
	useTLS      bool
	timeout     int
	service     int
	addressing  string
	format      string
	logLevel    string

	// update flags
	yes bool

	// config init flags
	force bool

	settings *config.Settings

	// prompt reads the password for --ask-password
	prompt func() (string, error)

	// pick chooses a device for update when no MAC address is given
	pick func(ctx context.Context, items []ui.PickerItem) (string, error)

	// spinnerOut shows the spinner; nil disables it
	spinnerOut *os.File
}

func newRootCmd() *cobra.Command {
	return newCLI().rootCmd()
}

func newCLI() *cli {
	return &cli{
		prompt: func() (string, error) {
			return ui.PromptPassword("Password: ")
		},
		pick:       pickDevice,
		spinnerOut: os.Stderr,
	}
}

func pickDevice(ctx context.Context, items []ui.PickerItem) (string, error) {
	if !ui.IsTerminal(os.Stdin) {
		return "", errMACRequired
	}
	picker := ui.Picker{
		Title:        "Select a powerline device to update",
		ManualPrompt: "MAC address",
		Validate: func(s string) error {
			_, err := net.ParseMAC(s)
			return err
		},
	}
	return picker.Run(ctx, items)
}

func (c *cli) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fritzpowerline",
		Short: "List FRITZ!Box powerline devices",
		Long: `Inspect the powerline adapters registered at an AVM FRITZ!Box.

Talks to the router's TR-064 interface (X_AVM-DE_Homeplug service) and
lists every adapter the router knows about: MAC address, name, model,
whether it is active and whether a firmware update is available.

If no command is specified, the router header and the device table are printed.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runOverview,
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.address, "address", "", "Router hostname or IP (default fritz.box)")
	flags.IntVar(&c.port, "port", 0, "TR-064 port (default 49000, or 49443 with --tls)")
	flags.StringVarP(&c.user, "user", "u", "", "TR-064 user name (default dslf-config)")
	flags.StringVarP(&c.password, "password", "p", "", "Router password (or set "+config.PasswordEnv+")")
	flags.BoolVar(&c.askPassword, "ask-password", false, "Prompt for the router password")
	flags.BoolVar(&c.useTLS, "tls", false, "Use HTTPS (self-signed router certificate is accepted)")
	flags.IntVar(&c.timeout, "timeout", 0, "Request timeout in seconds (default 10)")
	flags.IntVarP(&c.service, "service", "s", 0, "X_AVM-DE_Homeplug service instance (default 1)")
	flags.StringVar(&c.addressing, "addressing", "", "Service suffix rule: always or omit-first")
	flags.StringVarP(&c.format, "format", "f", "", "Output format (table, compact, json)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(
		c.listCmd(),
		c.countCmd(),
		c.showCmd(),
		c.updateCmd(),
		c.configCmd(),
		c.versionCmd(),
	)

	return rootCmd
}

// setup initializes logging and resolves settings from the config file and flags
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := c.initLogging(cmd, nil); err != nil {
		return err
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}
	return c.applyFlags(cmd, settings)
}

func (c *cli) initLogging(_ *cobra.Command, _ []string) error {
	return logging.Initialize(c.logLevel)
}

// applyFlags overrides settings with every flag given on the command line
// and stores the validated result
func (c *cli) applyFlags(cmd *cobra.Command, settings *config.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("address") {
		settings.Address = c.address
	}
	if flags.Changed("port") {
		settings.Port = c.port
	}
	if flags.Changed("user") {
		settings.Username = c.user
	}
	if flags.Changed("tls") {
		settings.UseTLS = c.useTLS
	}
	if flags.Changed("timeout") {
		settings.TimeoutSeconds = c.timeout
	}
	if flags.Changed("service") {
		settings.Service = c.service
	}
	if flags.Changed("addressing") {
		settings.Addressing = c.addressing
	}
	if flags.Changed("format") {
		settings.Format = c.format
	}

	if err := settings.Validate(); err != nil {
		return err
	}

	c.settings = settings
	return nil
}

// connect resolves the password and creates the TR-064 client and reader
func (c *cli) connect() (*tr064.Client, *homeplug.Powerline, error) {
	src := config.PasswordSource{Flag: c.password}
	if c.askPassword {
		src.Prompt = c.prompt
	}
	password, err := config.ResolvePassword(src)
	if err != nil {
		return nil, nil, err
	}

	addressing, err := homeplug.ParseAddressing(c.settings.Addressing)
	if err != nil {
		return nil, nil, err
	}

	client := tr064.NewClient(c.settings.ClientConfig(password))
	pl, err := homeplug.NewPowerline(client,
		homeplug.WithService(c.settings.Service),
		homeplug.WithAddressing(addressing),
	)
	if err != nil {
		return nil, nil, err
	}
	return client, pl, nil
}

// withSpinner runs op behind a spinner when stderr is a terminal
func (c *cli) withSpinner(ctx context.Context, label string, op func(ctx context.Context) error) error {
	if c.settings.Format == config.FormatJSON {
		return op(ctx)
	}
	return ui.RunWithSpinner(ctx, c.spinnerOut, label, op)
}

// runOverview prints the router header followed by the device list
func (c *cli) runOverview(cmd *cobra.Command, _ []string) error {
	client, pl, err := c.connect()
	if err != nil {
		return err
	}

	var (
		desc    *tr064.Description
		devices []homeplug.DeviceInfo
	)
	err = c.withSpinner(cmd.Context(), "Reading powerline devices...", func(ctx context.Context) error {
		var err error
		if desc, err = client.Description(ctx); err != nil {
			return err
		}
		devices, err = pl.Devices(ctx)
		return err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.settings.Format != config.FormatJSON {
		_, _ = fmt.Fprintln(out, c.header(desc, pl, client.BaseURL).Render())
		_, _ = fmt.Fprintln(out)
	}
	return c.printDevices(out, devices)
}

func (c *cli) header(desc *tr064.Description, pl *homeplug.Powerline, baseURL string) *ui.Header {
	title := desc.ModelName
	if title == "" {
		title = desc.FriendlyName
	}
	subtitle := ""
	if desc.SoftwareVersion != "" {
		subtitle = "FRITZ!OS " + desc.SoftwareVersion
	}

	return ui.NewHeader(title, subtitle,
		ui.Param{Key: "Address", Value: baseURL},
		ui.Param{Key: "Service", Value: pl.ServiceIdentifier()},
	)
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered powerline devices",
		Long: `List every powerline device registered at the router.

The device table is read index by index until the router reports the end
of the table, so the result always reflects the table as served.`,
		Example: `  # Table output
  fritzpowerline list -p secret

  # JSON for scripting
  FRITZ_PASSWORD=secret fritzpowerline list --format json

  # Second homeplug service instance
  fritzpowerline list --service 2 --ask-password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, pl, err := c.connect()
			if err != nil {
				return err
			}

			var devices []homeplug.DeviceInfo
			err = c.withSpinner(cmd.Context(), "Reading powerline devices...", func(ctx context.Context) error {
				var err error
				devices, err = pl.Devices(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return c.printDevices(cmd.OutOrStdout(), devices)
		},
	}
}

func (c *cli) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of registered powerline devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, pl, err := c.connect()
			if err != nil {
				return err
			}

			count, err := pl.DeviceCount(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.settings.Format == config.FormatJSON {
				return writeJSON(out, map[string]int{"count": count})
			}
			_, _ = fmt.Fprintln(out, count)
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <index|mac>",
		Short: "Show the raw entry of one powerline device",
		Long: `Show the raw device entry the router stores for one powerline device.

The device is selected by its position in the device table (a number) or
by its MAC address.`,
		Example: `  # By table position
  fritzpowerline show 0

  # By MAC address
  fritzpowerline show AA:BB:CC:DD:EE:FF --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pl, err := c.connect()
			if err != nil {
				return err
			}

			var record homeplug.Record
			if index, convErr := strconv.Atoi(args[0]); convErr == nil {
				record, err = pl.GenericDeviceEntry(cmd.Context(), index)
				if tr064.IsBoundary(err) {
					return fmt.Errorf("no powerline device at index %d: %w", index, err)
				}
			} else {
				record, err = pl.SpecificDeviceEntry(cmd.Context(), args[0])
				if err == nil {
					record[homeplug.FieldMACAddress] = args[0]
				}
			}
			if err != nil {
				return err
			}

			return c.printRecord(cmd.OutOrStdout(), record)
		},
	}
}

func (c *cli) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [mac]",
		Short: "Start a firmware update on a powerline device",
		Long: `Ask the router to start a firmware update on the powerline device with
the given MAC address.

The command returns as soon as the router accepted the request. The update
itself takes a few minutes; do not unplug the adapter until it is back
online. You are asked to confirm unless --yes is given.

Without a MAC address the registered devices are listed for selection.`,
		Example: `  fritzpowerline update AA:BB:CC:DD:EE:FF
  fritzpowerline update AA:BB:CC:DD:EE:FF --yes

  # Choose from the device list
  fritzpowerline update`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pl, err := c.connect()
			if err != nil {
				return err
			}

			var mac string
			if len(args) == 1 {
				mac = args[0]
			} else if mac, err = c.chooseDevice(cmd.Context(), pl); err != nil {
				return err
			}

			// Resolve the name first so unknown addresses fail before the prompt
			record, err := pl.SpecificDeviceEntry(cmd.Context(), mac)
			if err != nil {
				return err
			}
			name := record[homeplug.FieldName]

			if !c.yes {
				confirmer := &ui.Confirmer{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Width: ui.GetTerminalWidth()}
				if !confirmer.ConfirmDeviceUpdate(mac, name) {
					return errCancelled
				}
			}

			start := time.Now()
			if err := pl.RunDeviceUpdate(cmd.Context(), mac); err != nil {
				return err
			}
			logging.Info("Device update requested",
				zap.String("service", pl.ServiceIdentifier()),
				zap.String("mac", mac),
			)

			out := cmd.OutOrStdout()
			if c.settings.Format == config.FormatJSON {
				return writeJSON(out, map[string]string{"mac": mac, "name": name, "status": "requested"})
			}
			_, _ = fmt.Fprintln(out, ui.NewSuccessResult("Update started",
				ui.Param{Key: "Device", Value: displayName(name)},
				ui.Param{Key: "MAC", Value: mac},
				ui.Param{Key: "Service", Value: pl.ServiceIdentifier()},
				ui.Param{Key: "Accepted in", Value: time.Since(start).Round(time.Millisecond).String()},
			).Render())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&c.yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// chooseDevice lists the registered devices and lets the user pick one,
// devices with a pending update first
func (c *cli) chooseDevice(ctx context.Context, pl *homeplug.Powerline) (string, error) {
	var devices []homeplug.DeviceInfo
	err := c.withSpinner(ctx, "Reading powerline devices...", func(ctx context.Context) error {
		var err error
		devices, err = pl.Devices(ctx)
		return err
	})
	if err != nil {
		return "", err
	}

	items := make([]ui.PickerItem, 0, len(devices))
	for _, pending := range []bool{true, false} {
		for _, d := range devices {
			if d.UpdateAvailable != pending {
				continue
			}
			detail := d.MAC + " • " + d.Model
			if d.UpdateAvailable {
				detail += " • update available"
			}
			items = append(items, ui.PickerItem{Label: displayName(d.Name), Detail: detail, Value: d.MAC})
		}
	}

	mac, err := c.pick(ctx, items)
	if errors.Is(err, ui.ErrNoSelection) {
		return "", errCancelled
	}
	return mac, err
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		PersistentPreRunE: c.initLogging,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fritzpowerline %s\n", version.Full())
		},
	}
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}
