package platform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"tomatick/internal/core/model"
	ferrors "tomatick/internal/foundation/errors"
)

// ErrAlreadyRunning indicates another instance already answers on the control address.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard holds the control listener. Owning it is what makes this
// process the running instance.
type InstanceGuard struct {
	listener    net.Listener
	address     string
	releaseOnce sync.Once
}

// Prober reports whether an instance already answers at the control address.
type Prober func(ctx context.Context) bool

// AcquireSingleInstance binds address, which must be loopback. When the port
// is taken and probe confirms a live instance, ErrAlreadyRunning is returned.
func AcquireSingleInstance(ctx context.Context, address string, probe Prober) (*InstanceGuard, error) {
	if err := RequireLoopback(address); err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if probe != nil && probe(ctx) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("bind %s: %w", address, err)
	}
	return &InstanceGuard{listener: listener, address: listener.Addr().String()}, nil
}

// RequireLoopback returns a config error unless address is on a loopback interface.
func RequireLoopback(address string) error {
	if err := model.ValidateLoopback(address); err != nil {
		return ferrors.ConfigError("Control address must be loopback: "+address).
			WithContext("address", address).
			WithCause(err).
			Build()
	}
	return nil
}

// Listener returns the bound listener, to be served by the control server.
func (guard *InstanceGuard) Listener() net.Listener {
	if guard == nil {
		return nil
	}
	return guard.listener
}

// Release frees the address. It is safe to call more than once.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	var err error
	guard.releaseOnce.Do(func() {
		err = guard.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	})
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}
