// Package tr064test provides a fake FRITZ!Box TR-064 endpoint serving the
// X_AVM-DE_Homeplug service, for use in tests.
package tr064test

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	// Realm is the digest realm the router announces
	Realm = "F!Box SOAP-Auth"

	nonce       = "4E3A1B2C3D4E5F60"
	homeplugURN = "urn:dslforum-org:service:X_AVM-DE_Homeplug:1"
)

const description = `<?xml version="1.0"?>
<root xmlns="urn:dslforum-org:device-1-0">
  <systemVersion><Display>%s</Display></systemVersion>
  <device>
    <deviceType>urn:dslforum-org:device:InternetGatewayDevice:1</deviceType>
    <friendlyName>%s</friendlyName>
    <manufacturer>AVM</manufacturer>
    <modelName>%s</modelName>
    <serviceList>
      <service>
        <serviceType>urn:dslforum-org:service:X_AVM-DE_Homeplug:1</serviceType>
        <serviceId>urn:X_AVM-DE_Homeplug-com:serviceId:X_AVM-DE_Homeplug1</serviceId>
        <controlURL>/upnp/control/x_homeplug</controlURL>
        <eventSubURL>/upnp/control/x_homeplug</eventSubURL>
        <SCPDURL>/x_homeplugSCPD.xml</SCPDURL>
      </service>
    </serviceList>
  </device>
</root>`

// Call is one SOAP action the router received
type Call struct {
	Action    string
	Args      map[string]string
	UserAgent string
}

// Router is a fake TR-064 endpoint. Devices are served by
// GetGenericDeviceEntry in order; index len(Devices) answers with UPnP fault
// 713. Set User and Password to require digest authentication.
type Router struct {
	Model           string
	SoftwareVersion string
	User            string
	Password        string
	Devices         []map[string]string

	// FailAt makes GetGenericDeviceEntry at that index answer with HTTP 503
	// (-1 disables)
	FailAt int

	mu      sync.Mutex
	calls   []Call
	updated []string
}

// NewRouter creates a router serving devices without authentication
func NewRouter(devices ...map[string]string) *Router {
	return &Router{
		Model:           "FRITZ!Box 7590",
		SoftwareVersion: "154.07.57",
		Devices:         devices,
		FailAt:          -1,
	}
}

// Device returns a device entry with the given properties
func Device(mac, name, model string, active, updateAvailable bool) map[string]string {
	return map[string]string{
		"NewMACAddress":       mac,
		"NewActive":           flag(active),
		"NewName":             name,
		"NewModel":            model,
		"NewUpdateAvailable":  flag(updateAvailable),
		"NewUpdateSuccessful": "succeeded",
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Start serves the router until the test ends and returns the server
func (r *Router) Start(t testing.TB) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(r.Handler(t))
	t.Cleanup(server.Close)
	return server
}

// Calls returns the actions received so far
func (r *Router) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Updated returns the MAC addresses DeviceDoUpdate was called for
func (r *Router) Updated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.updated))
	copy(out, r.updated)
	return out
}

// Handler returns the HTTP handler serving the description and the
// homeplug control URL
func (r *Router) Handler(t testing.TB) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tr64desc.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = fmt.Fprintf(w, description, r.SoftwareVersion, r.Model, r.Model)
	})
	mux.HandleFunc("/upnp/control/x_homeplug", func(w http.ResponseWriter, req *http.Request) {
		if r.Password != "" && !Authorized(req, r.User, r.Password) {
			w.Header().Set("WWW-Authenticate", Challenge())
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		soapAction := strings.Trim(req.Header.Get("SOAPACTION"), `"`)
		urn, action, ok := strings.Cut(soapAction, "#")
		if !ok || urn != homeplugURN {
			t.Errorf("unexpected SOAPACTION header %q", soapAction)
			writeFault(w, 401, "Invalid Action")
			return
		}

		body, _ := io.ReadAll(req.Body)
		args, err := decodeArgs(body)
		if err != nil {
			t.Errorf("request body is not valid XML: %v", err)
			writeFault(w, 402, "Invalid Args")
			return
		}

		r.mu.Lock()
		r.calls = append(r.calls, Call{Action: action, Args: args, UserAgent: req.Header.Get("User-Agent")})
		r.mu.Unlock()

		r.serveAction(w, action, args)
	})
	return mux
}

func (r *Router) serveAction(w http.ResponseWriter, action string, args map[string]string) {
	switch action {
	case "GetNumberOfDeviceEntries":
		writeResponse(w, action, map[string]string{"NewNumberOfEntries": strconv.Itoa(len(r.Devices))})

	case "GetGenericDeviceEntry":
		index, err := strconv.Atoi(args["NewIndex"])
		if err != nil {
			writeFault(w, 402, "Invalid Args")
			return
		}
		if index == r.FailAt {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		if index < 0 || index >= len(r.Devices) {
			writeFault(w, 713, "SpecifiedArrayIndexInvalid")
			return
		}
		writeResponse(w, action, r.Devices[index])

	case "GetSpecificDeviceEntry":
		d := r.find(args["NewMACAddress"])
		if d == nil {
			writeFault(w, 714, "NoSuchEntryInArray")
			return
		}
		out := make(map[string]string, len(d))
		for k, v := range d {
			if k != "NewMACAddress" {
				out[k] = v
			}
		}
		writeResponse(w, action, out)

	case "DeviceDoUpdate":
		if r.find(args["NewMACAddress"]) == nil {
			writeFault(w, 714, "NoSuchEntryInArray")
			return
		}
		r.mu.Lock()
		r.updated = append(r.updated, args["NewMACAddress"])
		r.mu.Unlock()
		writeResponse(w, action, nil)

	default:
		writeFault(w, 401, "Invalid Action")
	}
}

func (r *Router) find(mac string) map[string]string {
	for _, d := range r.Devices {
		if strings.EqualFold(d["NewMACAddress"], mac) {
			return d
		}
	}
	return nil
}

// Challenge returns the WWW-Authenticate header the router sends
func Challenge() string {
	return fmt.Sprintf(`Digest realm="%s", nonce="%s", algorithm=MD5, qop="auth"`, Realm, nonce)
}

// Authorized checks the digest response in req against user and password
// for the router's challenge
func Authorized(req *http.Request, user, password string) bool {
	header, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Digest ")
	if !ok {
		return false
	}
	p := parseParams(header)
	if p["username"] != user || p["nonce"] != nonce || p["realm"] != Realm || p["uri"] != req.URL.RequestURI() {
		return false
	}
	ha1 := md5Hex(user + ":" + Realm + ":" + password)
	ha2 := md5Hex(req.Method + ":" + p["uri"])
	want := md5Hex(ha1 + ":" + nonce + ":" + p["nc"] + ":" + p["cnonce"] + ":" + p["qop"] + ":" + ha2)
	return p["response"] == want
}

// parseParams splits a digest header into its key/value pairs
func parseParams(s string) map[string]string {
	params := make(map[string]string)
	for _, part := range splitParams(s) {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		params[strings.ToLower(k)] = strings.Trim(v, `"`)
	}
	return params
}

// splitParams splits on commas outside quotes
func splitParams(s string) []string {
	var (
		parts  []string
		quoted bool
		start  int
	)
	for i, c := range s {
		switch c {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func decodeArgs(body []byte) (map[string]string, error) {
	var env struct {
		Body struct {
			Action struct {
				Args []struct {
					XMLName xml.Name
					Value   string `xml:",chardata"`
				} `xml:",any"`
			} `xml:",any"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	args := make(map[string]string)
	for _, a := range env.Body.Action.Args {
		args[a.XMLName.Local] = a.Value
	}
	return args, nil
}

func writeResponse(w http.ResponseWriter, action string, args map[string]string) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body>`)
	b.WriteString(`<u:` + action + `Response xmlns:u="` + homeplugURN + `">`)
	for _, k := range keys {
		b.WriteString("<" + k + ">")
		_ = xml.EscapeText(&b, []byte(args[k]))
		b.WriteString("</" + k + ">")
	}
	b.WriteString(`</u:` + action + `Response></s:Body></s:Envelope>`)

	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	_, _ = io.WriteString(w, b.String())
}

func writeFault(w http.ResponseWriter, code int, desc string) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintf(w, `<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body><s:Fault><faultcode>s:Client</faultcode><faultstring>UPnPError</faultstring><detail><UPnPError xmlns="urn:dslforum-org:control-1-0"><errorCode>%d</errorCode><errorDescription>%s</errorDescription></UPnPError></detail></s:Fault></s:Body></s:Envelope>`, code, desc)
}
