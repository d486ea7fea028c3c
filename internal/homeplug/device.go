package homeplug

import "fmt"

// DeviceInfo is the normalized view of one registered powerline device
type DeviceInfo struct {
	Service         int    `json:"service"`         // Service instance the device was read from
	Index           int    `json:"index"`           // Position in the router's device table
	Active          bool   `json:"active"`          // Device currently reachable on the powerline
	MAC             string `json:"mac"`             // Hardware address
	Name            string `json:"name"`            // Display name
	Model           string `json:"model"`           // Model identifier (e.g. "FRITZ!Powerline 1260E")
	UpdateAvailable bool   `json:"updateAvailable"` // Firmware update offered
	UpdateSuccess   bool   `json:"updateSuccess"`   // Last update succeeded
}

// newDeviceInfo normalizes a raw entry read at index from service instance
func newDeviceInfo(service, index int, r Record) (DeviceInfo, error) {
	info := DeviceInfo{Service: service, Index: index}

	var err error
	if info.Active, err = r.Bool(FieldActive); err != nil {
		return DeviceInfo{}, err
	}
	if info.MAC, err = r.Text(FieldMACAddress); err != nil {
		return DeviceInfo{}, err
	}
	if info.Name, err = r.Text(FieldName); err != nil {
		return DeviceInfo{}, err
	}
	if info.Model, err = r.Text(FieldModel); err != nil {
		return DeviceInfo{}, err
	}
	if info.UpdateAvailable, err = r.Bool(FieldUpdateAvailable); err != nil {
		return DeviceInfo{}, err
	}
	if info.UpdateSuccess, err = r.Bool(FieldUpdateSuccessful); err != nil {
		return DeviceInfo{}, err
	}

	return info, nil
}

// Summary returns a one-line summary of the device
func (d DeviceInfo) Summary() string {
	state := "inactive"
	if d.Active {
		state = "active"
	}
	name := d.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("#%d %s [%s] %s, %s", d.Index, name, d.MAC, d.Model, state)
}
