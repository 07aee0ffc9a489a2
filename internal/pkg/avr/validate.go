package avr

import (
	"context"
	"time"

	"github.com/anicoll/anthem-integration/internal/pkg/config"
)

// Validate performs a throwaway handshake during first-time setup. It dials
// the device with auto-reconnect off, waits for initialisation under the
// given bound, and extracts identity and capabilities. The short-lived
// session is closed on every exit path, success included; the durable
// session used at runtime is always a fresh connection.
func Validate(ctx context.Context, host string, port int, timeout time.Duration) (DeviceInfo, Capabilities, error) {
	session := NewSession(&config.AvrConfig{
		Host:          host,
		Port:          port,
		AutoReconnect: false,
	}, nil)
	defer session.Close()

	if err := session.Connect(ctx); err != nil {
		return DeviceInfo{}, Capabilities{}, err
	}
	if err := session.WaitForInitialised(ctx, timeout); err != nil {
		return DeviceInfo{}, Capabilities{}, err
	}
	return session.DeviceInfo(), session.Capabilities(), nil
}
