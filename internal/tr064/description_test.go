package tr064

import (
	"testing"
)

func TestParseDescription(t *testing.T) {
	desc, err := ParseDescription([]byte(mockDescription))
	if err != nil {
		t.Fatalf("ParseDescription() error = %v", err)
	}

	if desc.ModelName != "FRITZ!Box 7590" {
		t.Errorf("ModelName = %q, want FRITZ!Box 7590", desc.ModelName)
	}
	if desc.SoftwareVersion != "7.57" {
		t.Errorf("SoftwareVersion = %q, want 7.57", desc.SoftwareVersion)
	}

	names := desc.ServiceNames()
	want := []string{"DeviceInfo1", "Hosts1", "X_AVM-DE_Homeplug1"}
	if len(names) != len(want) {
		t.Fatalf("ServiceNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ServiceNames()[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	svc, err := desc.Service("X_AVM-DE_Homeplug1")
	if err != nil {
		t.Fatalf("Service() error = %v", err)
	}
	if svc.ServiceType != "urn:dslforum-org:service:X_AVM-DE_Homeplug:1" {
		t.Errorf("ServiceType = %q", svc.ServiceType)
	}
	if svc.ControlURL != "/upnp/control/x_homeplug" {
		t.Errorf("ControlURL = %q", svc.ControlURL)
	}
}

func TestDescription_ServiceNotFound(t *testing.T) {
	desc, err := ParseDescription([]byte(mockDescription))
	if err != nil {
		t.Fatalf("ParseDescription() error = %v", err)
	}

	_, err = desc.Service("X_AVM-DE_Homeplug")
	if !IsServiceNotFound(err) {
		t.Errorf("Service() error = %v, want service not found", err)
	}
}

func TestParseDescription_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not xml", data: "<<<"},
		{name: "no services", data: `<root><device><friendlyName>x</friendlyName></device></root>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescription([]byte(tt.data))
			if !IsParseError(err) {
				t.Errorf("ParseDescription() error = %v, want parse error", err)
			}
		})
	}
}

func TestServiceName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"urn:X_AVM-DE_Homeplug-com:serviceId:X_AVM-DE_Homeplug1", "X_AVM-DE_Homeplug1"},
		{"urn:DeviceInfo-com:serviceId:DeviceInfo1", "DeviceInfo1"},
		{"  plain  ", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := serviceName(tt.id); got != tt.want {
			t.Errorf("serviceName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestDescriptionSummary(t *testing.T) {
	desc := &Description{ModelName: "FRITZ!Box 7590", SoftwareVersion: "7.57"}
	if got := desc.Summary(); got != "FRITZ!Box 7590 (FritzOS 7.57)" {
		t.Errorf("Summary() = %q", got)
	}

	desc = &Description{FriendlyName: "fritz.box"}
	if got := desc.Summary(); got != "fritz.box" {
		t.Errorf("Summary() = %q", got)
	}
}
