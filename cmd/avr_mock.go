package cmd

import (
	"context"
	"time"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
)

// MockAvrService is a hand-rolled mock of AvrService for cmd tests.
type MockAvrService struct {
	ConnectFunc            func(ctx context.Context) error
	WaitForInitialisedFunc func(ctx context.Context, timeout time.Duration) error
	CloseFunc              func() error

	StateFunc        func() avr.State
	DeviceInfoFunc   func() avr.DeviceInfo
	DeviceStateFunc  func() avr.DeviceState
	CapabilitiesFunc func() avr.Capabilities
	ZonesFunc        func() []int
	ZoneFunc         func(number int) (avr.ZoneState, bool)
	RefreshFunc      func() error

	SetPowerFunc        func(zone int, on bool) error
	SetMuteFunc         func(zone int, muted bool) error
	SetVolumeFunc       func(zone int, fraction float64) error
	StepVolumeFunc      func(zone int, direction avr.Direction) error
	SelectSourceFunc    func(zone int, name string) error
	SelectSoundModeFunc func(name string) error
	SetARCFunc          func(on bool) error

	callback func(message string)
}

func (m *MockAvrService) Connect(ctx context.Context) error {
	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx)
	}
	return nil
}

func (m *MockAvrService) WaitForInitialised(ctx context.Context, timeout time.Duration) error {
	if m.WaitForInitialisedFunc != nil {
		return m.WaitForInitialisedFunc(ctx, timeout)
	}
	return nil
}

func (m *MockAvrService) RegisterChangeCallback(cb func(message string)) {
	m.callback = cb
}

// Notify invokes the registered change callback, standing in for an
// unsolicited device report.
func (m *MockAvrService) Notify(message string) {
	if m.callback != nil {
		m.callback(message)
	}
}

func (m *MockAvrService) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockAvrService) State() avr.State {
	if m.StateFunc != nil {
		return m.StateFunc()
	}
	return avr.StateReady
}

func (m *MockAvrService) DeviceInfo() avr.DeviceInfo {
	if m.DeviceInfoFunc != nil {
		return m.DeviceInfoFunc()
	}
	return avr.DeviceInfo{}
}

func (m *MockAvrService) DeviceState() avr.DeviceState {
	if m.DeviceStateFunc != nil {
		return m.DeviceStateFunc()
	}
	return avr.DeviceState{}
}

func (m *MockAvrService) Capabilities() avr.Capabilities {
	if m.CapabilitiesFunc != nil {
		return m.CapabilitiesFunc()
	}
	return avr.Capabilities{}
}

func (m *MockAvrService) Zones() []int {
	if m.ZonesFunc != nil {
		return m.ZonesFunc()
	}
	return nil
}

func (m *MockAvrService) Zone(number int) (avr.ZoneState, bool) {
	if m.ZoneFunc != nil {
		return m.ZoneFunc(number)
	}
	return avr.ZoneState{}, false
}

func (m *MockAvrService) Refresh() error {
	if m.RefreshFunc != nil {
		return m.RefreshFunc()
	}
	return nil
}

func (m *MockAvrService) SetPower(zone int, on bool) error {
	if m.SetPowerFunc != nil {
		return m.SetPowerFunc(zone, on)
	}
	return nil
}

func (m *MockAvrService) SetMute(zone int, muted bool) error {
	if m.SetMuteFunc != nil {
		return m.SetMuteFunc(zone, muted)
	}
	return nil
}

func (m *MockAvrService) SetVolume(zone int, fraction float64) error {
	if m.SetVolumeFunc != nil {
		return m.SetVolumeFunc(zone, fraction)
	}
	return nil
}

func (m *MockAvrService) StepVolume(zone int, direction avr.Direction) error {
	if m.StepVolumeFunc != nil {
		return m.StepVolumeFunc(zone, direction)
	}
	return nil
}

func (m *MockAvrService) SelectSource(zone int, name string) error {
	if m.SelectSourceFunc != nil {
		return m.SelectSourceFunc(zone, name)
	}
	return nil
}

func (m *MockAvrService) SelectSoundMode(name string) error {
	if m.SelectSoundModeFunc != nil {
		return m.SelectSoundModeFunc(name)
	}
	return nil
}

func (m *MockAvrService) SetARC(on bool) error {
	if m.SetARCFunc != nil {
		return m.SetARCFunc(on)
	}
	return nil
}
