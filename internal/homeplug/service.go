package homeplug

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/fritzpowerline/internal/tr064"
)

// Gateway invokes named actions on named services. *tr064.Client implements it.
type Gateway interface {
	CallAction(ctx context.Context, service, action string, args tr064.Arguments) (tr064.Arguments, error)
}

// Addressing selects how a service instance number becomes part of the
// service identifier
type Addressing int

const (
	// SuffixAlways appends the instance number to every identifier
	// ("X_AVM-DE_Homeplug1"). This matches the serviceIds routers publish.
	SuffixAlways Addressing = iota

	// SuffixOmitFirst addresses instance 1 by the bare service name and
	// appends the number from instance 2 on
	SuffixOmitFirst
)

// String returns the config/flag spelling of the addressing mode
func (a Addressing) String() string {
	switch a {
	case SuffixAlways:
		return "always"
	case SuffixOmitFirst:
		return "omit-first"
	default:
		return fmt.Sprintf("Addressing(%d)", int(a))
	}
}

// ParseAddressing parses "always" or "omit-first"
func ParseAddressing(s string) (Addressing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always":
		return SuffixAlways, nil
	case "omit-first":
		return SuffixOmitFirst, nil
	default:
		return SuffixAlways, fmt.Errorf("unknown addressing mode %q (want always or omit-first)", s)
	}
}

// Service addresses one numbered instance of a named remote service.
// The identifier is fixed at construction.
type Service struct {
	gateway    Gateway
	name       string
	instance   int
	identifier string
}

// NewService creates an addressor for instance (>= 1) of the named service
func NewService(gateway Gateway, name string, instance int, addressing Addressing) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("homeplug: nil gateway")
	}
	if name == "" {
		return nil, fmt.Errorf("homeplug: empty service name")
	}
	if instance < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInstance, instance)
	}

	identifier := name + strconv.Itoa(instance)
	if addressing == SuffixOmitFirst && instance == 1 {
		identifier = name
	}

	return &Service{
		gateway:    gateway,
		name:       name,
		instance:   instance,
		identifier: identifier,
	}, nil
}

// Identifier returns the concrete service identifier sent to the gateway
func (s *Service) Identifier() string {
	return s.identifier
}

// Instance returns the service instance number
func (s *Service) Instance() int {
	return s.instance
}

// Invoke calls action on the addressed service and returns the response
// unchanged. Gateway errors are returned as-is.
func (s *Service) Invoke(ctx context.Context, action string, args tr064.Arguments) (tr064.Arguments, error) {
	return s.gateway.CallAction(ctx, s.identifier, action, args)
}
