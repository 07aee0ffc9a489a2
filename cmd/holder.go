package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
)

// sessionHolder hands the rest of the process a stable handle on whichever
// session is currently live. Sessions are throwaway: a failed handshake gets
// the session closed and replaced, and long-lived consumers (http server,
// mqtt command subscription, cron refresh) must not hold the dead pointer.
type sessionHolder struct {
	mu  sync.RWMutex
	svc AvrService
}

func (h *sessionHolder) set(svc AvrService) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.svc = svc
}

func (h *sessionHolder) current() AvrService {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.svc
}

func (h *sessionHolder) Connect(ctx context.Context) error { return h.current().Connect(ctx) }

func (h *sessionHolder) WaitForInitialised(ctx context.Context, timeout time.Duration) error {
	return h.current().WaitForInitialised(ctx, timeout)
}

func (h *sessionHolder) RegisterChangeCallback(cb func(message string)) {
	h.current().RegisterChangeCallback(cb)
}

func (h *sessionHolder) Close() error { return h.current().Close() }

func (h *sessionHolder) State() avr.State               { return h.current().State() }
func (h *sessionHolder) DeviceInfo() avr.DeviceInfo     { return h.current().DeviceInfo() }
func (h *sessionHolder) DeviceState() avr.DeviceState   { return h.current().DeviceState() }
func (h *sessionHolder) Capabilities() avr.Capabilities { return h.current().Capabilities() }
func (h *sessionHolder) Zones() []int                   { return h.current().Zones() }

func (h *sessionHolder) Zone(number int) (avr.ZoneState, bool) { return h.current().Zone(number) }
func (h *sessionHolder) Refresh() error                        { return h.current().Refresh() }

func (h *sessionHolder) SetPower(zone int, on bool) error { return h.current().SetPower(zone, on) }

func (h *sessionHolder) SetMute(zone int, muted bool) error {
	return h.current().SetMute(zone, muted)
}

func (h *sessionHolder) SetVolume(zone int, fraction float64) error {
	return h.current().SetVolume(zone, fraction)
}

func (h *sessionHolder) StepVolume(zone int, direction avr.Direction) error {
	return h.current().StepVolume(zone, direction)
}

func (h *sessionHolder) SelectSource(zone int, name string) error {
	return h.current().SelectSource(zone, name)
}

func (h *sessionHolder) SelectSoundMode(name string) error {
	return h.current().SelectSoundMode(name)
}

func (h *sessionHolder) SetARC(on bool) error { return h.current().SetARC(on) }
