package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/fritzpowerline/internal/config"
	"github.com/muurk/fritzpowerline/internal/homeplug"
	"github.com/muurk/fritzpowerline/internal/tr064"
	"github.com/muurk/fritzpowerline/internal/tr064/tr064test"
	"github.com/muurk/fritzpowerline/internal/ui"
)

// testEnv isolates the config directory and password environment
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(config.PasswordEnv, "")
	return dir
}

func newTestRouter() *tr064test.Router {
	return tr064test.NewRouter(
		tr064test.Device("AA:BB:CC:DD:EE:01", "Living Room", "FRITZ!Powerline 1260E", true, false),
		tr064test.Device("AA:BB:CC:DD:EE:02", "Office", "FRITZ!Powerline 540E", false, true),
	)
}

// routerFlags points the CLI at the fake router
func routerFlags(t *testing.T, router *tr064test.Router) []string {
	t.Helper()
	server := router.Start(t)
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("failed to parse server URL: %v", err)
	}
	return []string{"--address", u.Hostname(), "--port", u.Port()}
}

func testCLI() *cli {
	c := newCLI()
	c.spinnerOut = nil
	c.prompt = func() (string, error) { return "pw", nil }
	c.pick = func(context.Context, []ui.PickerItem) (string, error) { return "", errMACRequired }
	return c
}

// run executes the CLI with args and returns everything written to stdout
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, testCLI(), stdin, args...)
}

func runCLI(t *testing.T, c *cli, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := c.rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList_JSON(t *testing.T) {
	testEnv(t)
	router := newTestRouter()
	args := append([]string{"list", "-p", "pw", "--format", "json"}, routerFlags(t, router)...)

	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var devices []homeplug.DeviceInfo
	if err := json.Unmarshal([]byte(out), &devices); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	if devices[0].MAC != "AA:BB:CC:DD:EE:01" || devices[0].Name != "Living Room" || !devices[0].Active {
		t.Errorf("devices[0] = %+v", devices[0])
	}
	if devices[1].Index != 1 || !devices[1].UpdateAvailable {
		t.Errorf("devices[1] = %+v", devices[1])
	}
	if devices[0].Service != 1 || !devices[0].UpdateSuccess {
		t.Errorf("devices[0] = %+v", devices[0])
	}
}

func TestList_Compact(t *testing.T) {
	testEnv(t)
	args := append([]string{"list", "-p", "pw", "-f", "compact"}, routerFlags(t, newTestRouter())...)

	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"#0 Living Room", "#1 Office", "(update available)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestList_Table(t *testing.T) {
	testEnv(t)
	args := append([]string{"list", "-p", "pw"}, routerFlags(t, newTestRouter())...)

	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"Name", "MAC", "Living Room", "AA:BB:CC:DD:EE:02", "available"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestList_Empty(t *testing.T) {
	testEnv(t)
	args := append([]string{"list", "-p", "pw", "-f", "compact"}, routerFlags(t, tr064test.NewRouter())...)

	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out != "No powerline devices registered.\n" {
		t.Errorf("output = %q", out)
	}
}

func TestList_TransportFailureAborts(t *testing.T) {
	testEnv(t)
	router := newTestRouter()
	router.FailAt = 1
	args := append([]string{"list", "-p", "pw", "-f", "json"}, routerFlags(t, router)...)

	out, err := run(t, "", args...)
	if !tr064.IsTransport(err) {
		t.Fatalf("error = %v, want transport failure", err)
	}
	if out != "" {
		t.Errorf("partial output written: %q", out)
	}
}

func TestOverview(t *testing.T) {
	testEnv(t)
	args := append([]string{"-p", "pw", "-f", "compact"}, routerFlags(t, newTestRouter())...)

	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	for _, want := range []string{"FRITZ!Box 7590", "FRITZ!OS 154.07.57", "X_AVM-DE_Homeplug1", "#0 Living Room"} {
		if !strings.Contains(out, want) {
			t.Errorf("overview missing %q:\n%s", want, out)
		}
	}
}

func TestCount(t *testing.T) {
	testEnv(t)
	flags := routerFlags(t, newTestRouter())

	out, err := run(t, "", append([]string{"count", "-p", "pw"}, flags...)...)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Errorf("count output = %q, want 2", out)
	}

	out, err = run(t, "", append([]string{"count", "-p", "pw", "-f", "json"}, flags...)...)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	var result map[string]int
	if err := json.Unmarshal([]byte(out), &result); err != nil || result["count"] != 2 {
		t.Errorf("count JSON = %q (%v)", out, err)
	}
}

func TestShow(t *testing.T) {
	testEnv(t)
	flags := routerFlags(t, newTestRouter())

	t.Run("by index", func(t *testing.T) {
		out, err := run(t, "", append([]string{"show", "1", "-p", "pw", "-f", "json"}, flags...)...)
		if err != nil {
			t.Fatalf("show failed: %v", err)
		}
		var record map[string]string
		if err := json.Unmarshal([]byte(out), &record); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if record[homeplug.FieldName] != "Office" || record[homeplug.FieldMACAddress] != "AA:BB:CC:DD:EE:02" {
			t.Errorf("record = %v", record)
		}
	})

	t.Run("by MAC", func(t *testing.T) {
		out, err := run(t, "", append([]string{"show", "AA:BB:CC:DD:EE:01", "-p", "pw", "-f", "compact"}, flags...)...)
		if err != nil {
			t.Fatalf("show failed: %v", err)
		}
		for _, want := range []string{homeplug.FieldMACAddress, "AA:BB:CC:DD:EE:01", "Living Room"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("index past the end", func(t *testing.T) {
		_, err := run(t, "", append([]string{"show", "5", "-p", "pw"}, flags...)...)
		if !tr064.IsBoundary(err) {
			t.Fatalf("error = %v, want boundary", err)
		}
		if !strings.Contains(err.Error(), "no powerline device at index 5") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("unknown MAC", func(t *testing.T) {
		_, err := run(t, "", append([]string{"show", "00:00:00:00:00:00", "-p", "pw"}, flags...)...)
		if !tr064.IsNotFound(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})
}

func TestUpdate(t *testing.T) {
	testEnv(t)

	t.Run("confirmed by flag", func(t *testing.T) {
		router := newTestRouter()
		args := append([]string{"update", "AA:BB:CC:DD:EE:02", "--yes", "-p", "pw", "-f", "json"}, routerFlags(t, router)...)

		out, err := run(t, "", args...)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if got := router.Updated(); len(got) != 1 || got[0] != "AA:BB:CC:DD:EE:02" {
			t.Errorf("router updated %v", got)
		}
		var result map[string]string
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if result["name"] != "Office" || result["status"] != "requested" {
			t.Errorf("result = %v", result)
		}
	})

	t.Run("confirmed by prompt", func(t *testing.T) {
		router := newTestRouter()
		args := append([]string{"update", "AA:BB:CC:DD:EE:01", "-p", "pw"}, routerFlags(t, router)...)

		out, err := run(t, "UPDATE\n", args...)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if len(router.Updated()) != 1 {
			t.Errorf("router updated %v", router.Updated())
		}
		if !strings.Contains(out, "Update started") {
			t.Errorf("output missing success box:\n%s", out)
		}
	})

	t.Run("declined", func(t *testing.T) {
		router := newTestRouter()
		args := append([]string{"update", "AA:BB:CC:DD:EE:01", "-p", "pw"}, routerFlags(t, router)...)

		_, err := run(t, "no\n", args...)
		if !errors.Is(err, errCancelled) {
			t.Fatalf("error = %v, want cancelled", err)
		}
		if len(router.Updated()) != 0 {
			t.Errorf("router updated %v after decline", router.Updated())
		}
	})

	t.Run("picked from list", func(t *testing.T) {
		router := newTestRouter()
		args := append([]string{"update", "--yes", "-p", "pw"}, routerFlags(t, router)...)

		var offered []ui.PickerItem
		c := testCLI()
		c.pick = func(_ context.Context, items []ui.PickerItem) (string, error) {
			offered = items
			return items[0].Value, nil
		}

		if _, err := runCLI(t, c, "", args...); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if len(offered) != 2 {
			t.Fatalf("picker offered %d devices, want 2", len(offered))
		}
		// Pending updates are listed first
		if offered[0].Label != "Office" || !strings.Contains(offered[0].Detail, "update available") {
			t.Errorf("first item = %+v", offered[0])
		}
		if got := router.Updated(); len(got) != 1 || got[0] != "AA:BB:CC:DD:EE:02" {
			t.Errorf("router updated %v", got)
		}
	})

	t.Run("picker closed", func(t *testing.T) {
		router := newTestRouter()
		args := append([]string{"update", "-p", "pw"}, routerFlags(t, router)...)

		c := testCLI()
		c.pick = func(context.Context, []ui.PickerItem) (string, error) { return "", ui.ErrNoSelection }

		if _, err := runCLI(t, c, "", args...); !errors.Is(err, errCancelled) {
			t.Fatalf("error = %v, want cancelled", err)
		}
		if len(router.Updated()) != 0 {
			t.Errorf("router updated %v", router.Updated())
		}
	})

	t.Run("no MAC without terminal", func(t *testing.T) {
		args := append([]string{"update", "-p", "pw"}, routerFlags(t, newTestRouter())...)
		if _, err := run(t, "", args...); !errors.Is(err, errMACRequired) {
			t.Errorf("error = %v, want MAC required", err)
		}
	})

	t.Run("unknown device fails before prompt", func(t *testing.T) {
		router := newTestRouter()
		args := append([]string{"update", "00:00:00:00:00:00", "-p", "pw"}, routerFlags(t, router)...)

		out, err := run(t, "", args...)
		if !tr064.IsNotFound(err) {
			t.Fatalf("error = %v, want not found", err)
		}
		if strings.Contains(out, "WARNING") {
			t.Errorf("confirmation shown for unknown device:\n%s", out)
		}
	})
}

func TestPassword(t *testing.T) {
	testEnv(t)
	router := newTestRouter()
	router.User = tr064.DefaultUsername
	router.Password = "pw"
	flags := routerFlags(t, router)

	t.Run("missing", func(t *testing.T) {
		_, err := run(t, "", append([]string{"count"}, flags...)...)
		if !errors.Is(err, config.ErrPasswordRequired) {
			t.Fatalf("error = %v, want password required", err)
		}
		if code := exitCode(err); code != 1 {
			t.Errorf("exitCode() = %d, want 1", code)
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv(config.PasswordEnv, "pw")
		out, err := run(t, "", append([]string{"count"}, flags...)...)
		if err != nil || strings.TrimSpace(out) != "2" {
			t.Errorf("count = %q, %v", out, err)
		}
	})

	t.Run("prompt", func(t *testing.T) {
		out, err := run(t, "", append([]string{"count", "--ask-password"}, flags...)...)
		if err != nil || strings.TrimSpace(out) != "2" {
			t.Errorf("count = %q, %v", out, err)
		}
	})

	t.Run("wrong", func(t *testing.T) {
		_, err := run(t, "", append([]string{"count", "-p", "nope"}, flags...)...)
		if !tr064.IsAuth(err) {
			t.Errorf("error = %v, want auth failure", err)
		}
	})
}

func TestInvalidFlags(t *testing.T) {
	testEnv(t)

	tests := [][]string{
		{"list", "--format", "xml"},
		{"list", "--service", "0"},
		{"list", "--addressing", "sometimes"},
		{"list", "--port", "70000"},
		{"list", "--address", "not a host"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args[1:], " "), func(t *testing.T) {
			_, err := run(t, "", append(args, "-p", "pw")...)
			var verrs config.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error = %v, want validation errors", err)
			}
			if !strings.Contains(renderError(err), "Invalid configuration") {
				t.Errorf("renderError() missing title for %v", err)
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	dir := testEnv(t)
	wantPath := filepath.Join(dir, "fritzpowerline", "config.yaml")

	out, err := run(t, "", "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(out) != wantPath {
		t.Errorf("config path = %q, want %q", out, wantPath)
	}

	if _, err := run(t, "", "config", "init", "--address", "192.168.178.1", "--tls", "-f", "compact"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := run(t, "", "config", "init"); err == nil {
		t.Error("config init overwrote an existing file without --force")
	}

	out, err = run(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"address: 192.168.178.1", "use_tls: true", "format: compact"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	// Flags override the stored file
	out, err = run(t, "", "config", "show", "--address", "fritz.box")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "address: fritz.box") {
		t.Errorf("flag did not override file:\n%s", out)
	}

	if _, err := run(t, "", "config", "init", "--force", "--service", "2"); err != nil {
		t.Fatalf("config init --force failed: %v", err)
	}
	settings, err := config.LoadFile(wantPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if settings.Service != 2 || settings.Address != tr064.DefaultAddress {
		t.Errorf("settings after --force = %+v", settings)
	}
}

func TestStoredSettingsUsed(t *testing.T) {
	testEnv(t)
	flags := routerFlags(t, newTestRouter())

	// Address and port from the file, format from the file
	if _, err := run(t, "", append([]string{"config", "init", "-f", "json"}, flags...)...); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	out, err := run(t, "", "count", "-p", "pw")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if !strings.Contains(out, `"count": 2`) {
		t.Errorf("count output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	testEnv(t)
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "fritzpowerline ") {
		t.Errorf("version output = %q", out)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"cancelled", errCancelled, 1},
		{"interrupted", context.Canceled, 130},
		{"other", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{tr064.NewAuthError("authentication failed (check credentials)"), "Authentication failed"},
		{tr064.NewTransportError("request failed", errors.New("connection refused")), "Router unreachable"},
		{errors.New("boom"), "Command failed"},
	}
	for _, tt := range tests {
		if got := renderError(tt.err); !strings.Contains(got, tt.title) {
			t.Errorf("renderError(%v) missing %q:\n%s", tt.err, tt.title, got)
		}
	}
}
