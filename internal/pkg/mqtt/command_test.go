package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
	"github.com/anicoll/anthem-integration/internal/pkg/config"
)

type recordedCall struct {
	name string
	zone int
	arg  any
}

type fakeGateway struct {
	calls []recordedCall
}

func (g *fakeGateway) SetPower(zone int, on bool) error {
	g.calls = append(g.calls, recordedCall{"SetPower", zone, on})
	return nil
}

func (g *fakeGateway) SetMute(zone int, muted bool) error {
	g.calls = append(g.calls, recordedCall{"SetMute", zone, muted})
	return nil
}

func (g *fakeGateway) SetVolume(zone int, fraction float64) error {
	g.calls = append(g.calls, recordedCall{"SetVolume", zone, fraction})
	return nil
}

func (g *fakeGateway) StepVolume(zone int, direction avr.Direction) error {
	g.calls = append(g.calls, recordedCall{"StepVolume", zone, direction})
	return nil
}

func (g *fakeGateway) SelectSource(zone int, name string) error {
	g.calls = append(g.calls, recordedCall{"SelectSource", zone, name})
	return nil
}

func (g *fakeGateway) SelectSoundMode(name string) error {
	g.calls = append(g.calls, recordedCall{"SelectSoundMode", 0, name})
	return nil
}

func (g *fakeGateway) SetARC(on bool) error {
	g.calls = append(g.calls, recordedCall{"SetARC", 0, on})
	return nil
}

func newTestService() *Service {
	return New(nil, &config.MqttConfig{CommandPrefix: "anthem", DiscoveryPrefix: "homeassistant"})
}

func TestHandleCommandZoneOperations(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	for _, tc := range []struct {
		topic   string
		payload string
		want    recordedCall
	}{
		{"anthem/theatre/zone/1/power", "on", recordedCall{"SetPower", 1, true}},
		{"anthem/theatre/zone/1/power", "off", recordedCall{"SetPower", 1, false}},
		{"anthem/theatre/zone/2/mute", "true", recordedCall{"SetMute", 2, true}},
		{"anthem/theatre/zone/1/volume", "0.55", recordedCall{"SetVolume", 1, 0.55}},
		{"anthem/theatre/zone/1/volume_step", "up", recordedCall{"StepVolume", 1, avr.VolumeUp}},
		{"anthem/theatre/zone/2/volume_step", "down", recordedCall{"StepVolume", 2, avr.VolumeDown}},
		{"anthem/theatre/zone/1/source", "Apple TV", recordedCall{"SelectSource", 1, "Apple TV"}},
	} {
		gw := &fakeGateway{}
		require.NoError(t, svc.handleCommand(gw, tc.topic, tc.payload), tc.topic)
		require.Len(t, gw.calls, 1, tc.topic)
		assert.Equal(t, tc.want, gw.calls[0], tc.topic)
	}
}

func TestHandleCommandDeviceOperations(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	gw := &fakeGateway{}
	require.NoError(t, svc.handleCommand(gw, "anthem/theatre/device/sound_mode", "Dolby Surround"))
	require.NoError(t, svc.handleCommand(gw, "anthem/theatre/device/arc", "on"))
	require.NoError(t, svc.handleCommand(gw, "anthem/theatre/device/arc", "off"))

	assert.Equal(t, []recordedCall{
		{"SelectSoundMode", 0, "Dolby Surround"},
		{"SetARC", 0, true},
		{"SetARC", 0, false},
	}, gw.calls)
}

func TestHandleCommandRejectsMalformedTopics(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	gw := &fakeGateway{}

	for _, topic := range []string{
		"anthem/theatre",
		"anthem/theatre/zone/notanumber/power",
		"anthem/theatre/zone/1",
		"anthem/theatre/zone/1/explode",
		"anthem/theatre/device/explode",
	} {
		assert.Error(t, svc.handleCommand(gw, topic, "on"), topic)
	}
	assert.Empty(t, gw.calls)
}

func TestHandleCommandRejectsBadVolumePayload(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	gw := &fakeGateway{}

	assert.Error(t, svc.handleCommand(gw, "anthem/theatre/zone/1/volume", "loud"))
	assert.Empty(t, gw.calls)
}
