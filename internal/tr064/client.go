package tr064

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/huin/goupnp/soap"
	"github.com/icholy/digest"
	"go.uber.org/zap"

	"github.com/muurk/fritzpowerline/internal/logging"
	"github.com/muurk/fritzpowerline/internal/version"
)

const (
	// DefaultAddress is the hostname AVM routers answer to on the home network
	DefaultAddress = "fritz.box"

	// DefaultPort is the plain HTTP TR-064 port
	DefaultPort = 49000

	// DefaultTLSPort is the HTTPS TR-064 port
	DefaultTLSPort = 49443

	// DefaultUsername is used when the router is configured without user names
	DefaultUsername = "dslf-config"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps description and SOAP response bodies
	maxBodySize = 4 << 20
)

// Config holds the connection settings for a Client
type Config struct {
	Address  string        // Router hostname or IP (default "fritz.box")
	Port     int           // TR-064 port (default 49000, or 49443 with TLS)
	Username string        // Digest auth user name
	Password string        // Digest auth password
	UseTLS   bool          // Use HTTPS; router certificates are self-signed
	Timeout  time.Duration // HTTP request timeout
}

// Client invokes TR-064 actions on a router. It is safe for concurrent use.
type Client struct {
	// BaseURL is the base URL for the router (e.g., "http://192.168.178.1:49000")
	BaseURL string

	// Username for HTTP Digest Auth
	Username string

	// Password for HTTP Digest Auth
	Password string

	// HTTPClient is the underlying HTTP client. Its transport answers
	// digest challenges and reuses them for later requests.
	HTTPClient *http.Client

	// mu guards description
	mu          sync.Mutex
	description *Description
}

// NewClient creates a new TR-064 client from cfg, filling in defaults
func NewClient(cfg Config) *Client {
	address := cfg.Address
	if address == "" {
		address = DefaultAddress
	}

	scheme := "http"
	port := cfg.Port
	if cfg.UseTLS {
		scheme = "https"
		if port == 0 {
			port = DefaultTLSPort
		}
	} else if port == 0 {
		port = DefaultPort
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	username := cfg.Username
	if username == "" {
		username = DefaultUsername
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.UseTLS {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // routers ship self-signed certificates
		httpClient.Transport = transport
	}

	return NewClientWithURL(fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(address, strconv.Itoa(port))), username, cfg.Password, httpClient)
}

// NewClientWithURL creates a new client with a full base URL
// baseURL: Full base URL (e.g., "http://192.168.178.1:49000")
// httpClient is copied, not modified; nil means a client with DefaultTimeout.
func NewClientWithURL(baseURL, username, password string, httpClient *http.Client) *Client {
	client := http.Client{Timeout: DefaultTimeout}
	if httpClient != nil {
		client = *httpClient
	}

	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	client.Transport = &digest.Transport{
		Username:  username,
		Password:  password,
		Transport: base,
	}

	return &Client{
		BaseURL:    baseURL,
		Username:   username,
		Password:   password,
		HTTPClient: &client,
	}
}

// Description returns the router's device description, fetching it on first use.
// A failed fetch is not remembered; the next call tries again.
func (c *Client) Description(ctx context.Context) (*Description, error) {
	c.mu.Lock()
	desc := c.description
	c.mu.Unlock()
	if desc != nil {
		return desc, nil
	}

	desc, err := c.fetchDescription(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.description == nil {
		c.description = desc
	}
	desc = c.description
	c.mu.Unlock()

	return desc, nil
}

func (c *Client) fetchDescription(ctx context.Context) (*Description, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+DescriptionPath, nil)
	if err != nil {
		return nil, NewTransportError("failed to create description request", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewTransportError("router unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, NewTransportError(fmt.Sprintf("description request returned HTTP %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, NewTransportError("failed to read description", err)
	}

	desc, err := ParseDescription(body)
	if err != nil {
		return nil, err
	}

	logging.Debug("TR-064 description loaded",
		zap.String("model", desc.ModelName),
		zap.Int("services", len(desc.Services)),
	)

	return desc, nil
}

// CallAction invokes action on the named service (e.g. "X_AVM-DE_Homeplug1")
// and returns the action's out arguments. Errors are *ActionError values.
func (c *Client) CallAction(ctx context.Context, service, action string, args Arguments) (Arguments, error) {
	start := time.Now()
	out, err := c.callAction(ctx, service, action, args)
	logging.LogAction(service, action, time.Since(start), err)

	if err != nil {
		var ae *ActionError
		if errors.As(err, &ae) {
			if ae.Service == "" {
				ae.Service = service
			}
			if ae.Action == "" {
				ae.Action = action
			}
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) callAction(ctx context.Context, service, action string, args Arguments) (Arguments, error) {
	desc, err := c.Description(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := desc.Service(service)
	if err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(c.BaseURL + svc.ControlURL)
	if err != nil {
		return nil, NewTransportError("invalid control URL", err)
	}

	rt := &callTransport{next: c.HTTPClient.Transport}
	sc := soap.NewSOAPClient(*endpoint)
	sc.HTTPClient = *c.HTTPClient
	sc.HTTPClient.Transport = rt

	var out Arguments
	err = sc.PerformActionCtx(ctx, svc.ServiceType, action, requestArgs(args), &out)

	var fault *soap.SOAPFaultError
	switch {
	case err == nil:
		if out == nil {
			out = Arguments{}
		}
		return out, nil
	case rt.err != nil:
		return nil, NewTransportError("SOAP request failed", rt.err)
	case rt.status == http.StatusUnauthorized:
		return nil, NewAuthError("authentication failed (check credentials)")
	case errors.As(err, &fault):
		return nil, faultError(fault)
	case rt.status == 0:
		return nil, NewTransportError("SOAP request failed", err)
	case rt.status != http.StatusOK:
		return nil, NewTransportError(fmt.Sprintf("unexpected status code: %d", rt.status), err)
	default:
		return nil, NewParseError("failed to parse SOAP response", err)
	}
}

// callTransport tags one action call with the User-Agent and remembers how
// its final exchange went. The SOAP client reports failures as text only.
type callTransport struct {
	next http.RoundTripper

	status int
	err    error
}

func (t *callTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := next.RoundTrip(req)
	if err != nil {
		t.err = err
		return nil, err
	}
	t.status = resp.StatusCode
	resp.Body = &limitedBody{r: io.LimitReader(resp.Body, maxBodySize), c: resp.Body, t: t}
	return resp, nil
}

// limitedBody caps a response body and records read failures on its call
type limitedBody struct {
	r io.Reader
	c io.Closer
	t *callTransport
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		b.t.err = err
	}
	return n, err
}

func (b *limitedBody) Close() error {
	return b.c.Close()
}
