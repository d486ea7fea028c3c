package homeplug

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/fritzpowerline/internal/logging"
	"github.com/muurk/fritzpowerline/internal/tr064"
)

// ServiceName is the TR-064 service for powerline devices. The instance
// number is appended by the addressor, never here.
const ServiceName = "X_AVM-DE_Homeplug"

// Actions of the X_AVM-DE_Homeplug service
const (
	ActionGetNumberOfDeviceEntries = "GetNumberOfDeviceEntries"
	ActionGetGenericDeviceEntry    = "GetGenericDeviceEntry"
	ActionGetSpecificDeviceEntry   = "GetSpecificDeviceEntry"
	ActionDeviceDoUpdate           = "DeviceDoUpdate"
)

// Option configures a Powerline reader
type Option func(*options)

type options struct {
	service    int
	addressing Addressing
}

// WithService selects the service instance (default 1)
func WithService(instance int) Option {
	return func(o *options) {
		o.service = instance
	}
}

// WithAddressing selects how the instance number is rendered
func WithAddressing(a Addressing) Option {
	return func(o *options) {
		o.addressing = a
	}
}

// Powerline reads the router's registry of powerline adapters
type Powerline struct {
	svc *Service
}

// NewPowerline creates a reader for the powerline registry behind gateway
func NewPowerline(gateway Gateway, opts ...Option) (*Powerline, error) {
	o := options{service: 1, addressing: SuffixAlways}
	for _, opt := range opts {
		opt(&o)
	}

	svc, err := NewService(gateway, ServiceName, o.service, o.addressing)
	if err != nil {
		return nil, err
	}
	return &Powerline{svc: svc}, nil
}

// ServiceInstance returns the configured service instance number
func (p *Powerline) ServiceInstance() int {
	return p.svc.Instance()
}

// ServiceIdentifier returns the identifier every call addresses
func (p *Powerline) ServiceIdentifier() string {
	return p.svc.Identifier()
}

// DeviceCount returns the number of registered powerline devices
func (p *Powerline) DeviceCount(ctx context.Context) (int, error) {
	out, err := p.svc.Invoke(ctx, ActionGetNumberOfDeviceEntries, nil)
	if err != nil {
		return 0, err
	}
	return recordFromArguments(out).Int(FieldNumberOfEntries)
}

// GenericDeviceEntry returns the raw entry stored at index. An index past
// the last entry yields an error matching tr064.ErrBoundaryReached.
func (p *Powerline) GenericDeviceEntry(ctx context.Context, index int) (Record, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeIndex, index)
	}

	out, err := p.svc.Invoke(ctx, ActionGetGenericDeviceEntry, tr064.Arguments{
		"NewIndex": tr064.Int(index),
	})
	if err != nil {
		return nil, err
	}
	return recordFromArguments(out), nil
}

// LookupIndex probes index and classifies the outcome
func (p *Powerline) LookupIndex(ctx context.Context, index int) Lookup {
	r, err := p.GenericDeviceEntry(ctx, index)
	switch {
	case err == nil:
		return found(r)
	case tr064.IsBoundary(err):
		return exhausted()
	default:
		return failed(err)
	}
}

// SpecificDeviceEntry returns the raw entry of the device with the given MAC
// address. Unknown addresses yield an error matching tr064.ErrNotFound.
func (p *Powerline) SpecificDeviceEntry(ctx context.Context, mac string) (Record, error) {
	out, err := p.svc.Invoke(ctx, ActionGetSpecificDeviceEntry, tr064.Arguments{
		FieldMACAddress: mac,
	})
	if err != nil {
		return nil, err
	}
	return recordFromArguments(out), nil
}

// RunDeviceUpdate asks the device with the given MAC address to update its
// firmware. It returns as soon as the router accepted the request; the
// update itself runs for a while afterwards and the device must stay
// powered until it is done.
func (p *Powerline) RunDeviceUpdate(ctx context.Context, mac string) error {
	_, err := p.svc.Invoke(ctx, ActionDeviceDoUpdate, tr064.Arguments{
		FieldMACAddress: mac,
	})
	return err
}

// Devices enumerates the registry from index 0 until the router reports the
// index range exhausted. Any other failure aborts the scan and no partial
// list is returned.
func (p *Powerline) Devices(ctx context.Context) ([]DeviceInfo, error) {
	devices := make([]DeviceInfo, 0)
	service := p.svc.Identifier()

	for index := 0; ; index++ {
		res := p.LookupIndex(ctx, index)
		logging.LogProbe(service, index, res.Status.String())

		switch res.Status {
		case LookupExhausted:
			logging.Info("Powerline devices enumerated",
				zap.String("service", service),
				zap.Int("devices", len(devices)),
			)
			return devices, nil

		case LookupFailed:
			return nil, res.Err

		case LookupFound:
			info, err := newDeviceInfo(p.svc.Instance(), index, res.Record)
			if err != nil {
				logging.Warn("Malformed powerline device entry",
					zap.String("service", service),
					zap.Int("index", index),
					zap.Error(err),
				)
				return nil, fmt.Errorf("device entry %d: %w", index, err)
			}
			devices = append(devices, info)
		}
	}
}
