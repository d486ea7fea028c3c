package tr064

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// DescriptionPath is the location of the TR-064 device description
const DescriptionPath = "/tr64desc.xml"

// Service describes one service published in the device description
type Service struct {
	// Name is the serviceId suffix used to address the service (e.g. "X_AVM-DE_Homeplug1")
	Name string

	// ServiceType is the URN sent in the SOAPACTION header
	ServiceType string

	// ControlURL is the path actions are posted to
	ControlURL string

	// SCPDURL is the path of the service's action description
	SCPDURL string
}

// Description is the parsed TR-064 device description of a router
type Description struct {
	FriendlyName    string
	Manufacturer    string
	ModelName       string
	SoftwareVersion string
	Services        map[string]*Service
}

type xmlRoot struct {
	XMLName       xml.Name  `xml:"root"`
	SystemVersion xmlSysVer `xml:"systemVersion"`
	Device        xmlDevice `xml:"device"`
}

type xmlSysVer struct {
	Display string `xml:"Display"`
}

type xmlDevice struct {
	FriendlyName string       `xml:"friendlyName"`
	Manufacturer string       `xml:"manufacturer"`
	ModelName    string       `xml:"modelName"`
	Services     []xmlService `xml:"serviceList>service"`
	Devices      []xmlDevice  `xml:"deviceList>device"`
}

type xmlService struct {
	ServiceType string `xml:"serviceType"`
	ServiceID   string `xml:"serviceId"`
	ControlURL  string `xml:"controlURL"`
	SCPDURL     string `xml:"SCPDURL"`
}

// ParseDescription parses a tr64desc.xml document
func ParseDescription(data []byte) (*Description, error) {
	var root xmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, NewParseError("failed to parse device description", err)
	}

	desc := &Description{
		FriendlyName:    strings.TrimSpace(root.Device.FriendlyName),
		Manufacturer:    strings.TrimSpace(root.Device.Manufacturer),
		ModelName:       strings.TrimSpace(root.Device.ModelName),
		SoftwareVersion: strings.TrimSpace(root.SystemVersion.Display),
		Services:        make(map[string]*Service),
	}
	collectServices(&root.Device, desc.Services)

	if len(desc.Services) == 0 {
		return nil, NewParseError("device description lists no services", nil)
	}

	return desc, nil
}

// collectServices walks the embedded device tree. The first occurrence of a
// service name wins.
func collectServices(dev *xmlDevice, into map[string]*Service) {
	for _, s := range dev.Services {
		name := serviceName(s.ServiceID)
		if name == "" {
			continue
		}
		if _, exists := into[name]; exists {
			continue
		}
		into[name] = &Service{
			Name:        name,
			ServiceType: strings.TrimSpace(s.ServiceType),
			ControlURL:  strings.TrimSpace(s.ControlURL),
			SCPDURL:     strings.TrimSpace(s.SCPDURL),
		}
	}

	for i := range dev.Devices {
		collectServices(&dev.Devices[i], into)
	}
}

// serviceName extracts "X_AVM-DE_Homeplug1" from
// "urn:X_AVM-DE_Homeplug-com:serviceId:X_AVM-DE_Homeplug1".
func serviceName(serviceID string) string {
	serviceID = strings.TrimSpace(serviceID)
	if i := strings.LastIndex(serviceID, ":"); i >= 0 {
		return serviceID[i+1:]
	}
	return serviceID
}

// Service returns the service with the given name
func (d *Description) Service(name string) (*Service, error) {
	svc, ok := d.Services[name]
	if !ok {
		return nil, &ActionError{
			Type:    ErrTypeServiceNotFound,
			Message: fmt.Sprintf("router does not publish service %q", name),
			Service: name,
		}
	}
	return svc, nil
}

// ServiceNames returns the published service names in sorted order
func (d *Description) ServiceNames() []string {
	names := make([]string, 0, len(d.Services))
	for name := range d.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns a one-line description of the router
func (d *Description) Summary() string {
	model := d.ModelName
	if model == "" {
		model = d.FriendlyName
	}
	if d.SoftwareVersion != "" {
		return fmt.Sprintf("%s (FritzOS %s)", model, d.SoftwareVersion)
	}
	return model
}
