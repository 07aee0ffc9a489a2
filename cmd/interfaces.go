package cmd

import (
	"context"
	"time"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
)

// AvrService is what cmd.run expects from a device session.
type AvrService interface {
	Connect(ctx context.Context) error
	WaitForInitialised(ctx context.Context, timeout time.Duration) error
	RegisterChangeCallback(cb func(message string))
	Close() error

	State() avr.State
	DeviceInfo() avr.DeviceInfo
	DeviceState() avr.DeviceState
	Capabilities() avr.Capabilities
	Zones() []int
	Zone(number int) (avr.ZoneState, bool)
	Refresh() error

	SetPower(zone int, on bool) error
	SetMute(zone int, muted bool) error
	SetVolume(zone int, fraction float64) error
	StepVolume(zone int, direction avr.Direction) error
	SelectSource(zone int, name string) error
	SelectSoundMode(name string) error
	SetARC(on bool) error
}
