package entity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
	"github.com/anicoll/anthem-integration/internal/pkg/dispatcher"
	"github.com/anicoll/anthem-integration/internal/pkg/model"
)

// fakeSession implements the read side of a session with fixed state.
type fakeSession struct {
	mu     sync.Mutex
	info   avr.DeviceInfo
	device avr.DeviceState
	caps   avr.Capabilities
	zones  map[int]avr.ZoneState
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		info: avr.DeviceInfo{MAC: "aa:bb:cc:dd:ee:ff", Model: "MRX 720", Name: "Theatre"},
		device: avr.DeviceState{
			SoundMode:     "Dolby Surround",
			SoundModeList: []string{"None", "Dolby Surround"},
			InputList:     []string{"Apple TV"},
		},
		caps: avr.Capabilities{SoundMode: true, ARC: true},
		zones: map[int]avr.ZoneState{
			1: {Number: 1, Power: avr.PowerOn, Volume: 0.55, Input: "Apple TV"},
			2: {Number: 2, Power: avr.PowerOff},
		},
	}
}

func (f *fakeSession) Zone(number int) (avr.ZoneState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	zone, ok := f.zones[number]
	return zone, ok
}

func (f *fakeSession) Zones() []int {
	return []int{1, 2}
}

func (f *fakeSession) DeviceInfo() avr.DeviceInfo { return f.info }

func (f *fakeSession) DeviceState() avr.DeviceState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.device
}

func (f *fakeSession) Capabilities() avr.Capabilities { return f.caps }

func (f *fakeSession) setZone(zone avr.ZoneState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zones[zone.Number] = zone
}

type capturedPublish struct {
	entity *model.Entity
	fields map[string]string
}

// capture returns a publishFunc recording every call.
func capture(calls *[]capturedPublish, mu *sync.Mutex) publishFunc {
	return func(_ context.Context, entity *model.Entity, fields map[string]string) error {
		mu.Lock()
		defer mu.Unlock()
		*calls = append(*calls, capturedPublish{entity: entity, fields: fields})
		return nil
	}
}

func TestZoneEntityNaming(t *testing.T) {
	t.Parallel()
	sess := newFakeSession()

	main := NewZoneEntity(sess, 1)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", main.Model().ID)
	assert.Equal(t, "Theatre", main.Model().Name)
	assert.Equal(t, model.EntityKindZone, main.Model().Kind)

	second := NewZoneEntity(sess, 2)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff_2", second.Model().ID)
	assert.Equal(t, "Theatre zone 2", second.Model().Name)
}

func TestZoneEntityLifecycle(t *testing.T) {
	t.Parallel()
	sess := newFakeSession()
	bus := dispatcher.New()

	var mu sync.Mutex
	var calls []capturedPublish

	ent := NewZoneEntity(sess, 1)
	ent.logger = zaptest.NewLogger(t)
	ent.publish = capture(&calls, &mu)

	// activation pushes the initial state before subscribing
	ent.Activate(bus)
	mu.Lock()
	require.Len(t, calls, 1)
	assert.Equal(t, "on", calls[0].fields[model.FieldState])
	assert.Equal(t, "0.55", calls[0].fields[model.FieldVolume])
	mu.Unlock()

	sess.setZone(avr.ZoneState{Number: 1, Power: avr.PowerOn, Volume: 0.60, Input: "Apple TV"})
	bus.Publish("aa:bb:cc:dd:ee:ff")
	mu.Lock()
	require.Len(t, calls, 2)
	assert.Equal(t, "0.60", calls[1].fields[model.FieldVolume])
	mu.Unlock()

	ent.Deactivate()
	bus.Publish("aa:bb:cc:dd:ee:ff")
	mu.Lock()
	assert.Len(t, calls, 2, "no publish after deactivation")
	mu.Unlock()
}

// One device notification reaches every zone observer; each recomputes its
// own view, so an unrelated zone republishes its unchanged state.
func TestVolumeChangeNotifiesBothZoneObservers(t *testing.T) {
	t.Parallel()
	sess := newFakeSession()
	bus := dispatcher.New()

	var mu sync.Mutex
	var calls []capturedPublish

	main := NewZoneEntity(sess, 1)
	main.publish = capture(&calls, &mu)
	second := NewZoneEntity(sess, 2)
	second.publish = capture(&calls, &mu)

	main.Activate(bus)
	second.Activate(bus)
	mu.Lock()
	calls = calls[:0]
	mu.Unlock()

	sess.setZone(avr.ZoneState{Number: 1, Power: avr.PowerOn, Volume: 0.5, Input: "Apple TV"})
	bus.Publish("aa:bb:cc:dd:ee:ff")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	byEntity := map[string]map[string]string{}
	for _, call := range calls {
		byEntity[call.entity.ID] = call.fields
	}
	assert.Equal(t, "0.50", byEntity["aa:bb:cc:dd:ee:ff"][model.FieldVolume])
	assert.Equal(t, "0.00", byEntity["aa:bb:cc:dd:ee:ff_2"][model.FieldVolume])
}

func TestZoneEntityGatesSoundModeFields(t *testing.T) {
	t.Parallel()
	sess := newFakeSession()

	ent := NewZoneEntity(sess, 1)
	fields := stateFields(ent.View())
	assert.Equal(t, "Dolby Surround", fields[model.FieldSoundMode])
	assert.Equal(t, "None, Dolby Surround", fields[model.FieldSoundModeList])

	sess.setZone(avr.ZoneState{Number: 1, Power: avr.PowerOff})
	fields = stateFields(ent.View())
	assert.Equal(t, "", fields[model.FieldSoundMode], "gated fields publish empty, not stale")
	assert.Equal(t, "", fields[model.FieldSoundModeList])
}

func TestBuildAllIncludesARCSwitch(t *testing.T) {
	t.Parallel()
	sess := newFakeSession()

	entities := BuildAll(sess)
	require.Len(t, entities, 3)
	assert.Equal(t, model.EntityKindSwitch, entities[2].Model().Kind)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff_arc", entities[2].Model().ID)

	sess.caps.ARC = false
	entities = BuildAll(sess)
	assert.Len(t, entities, 2)
}

func TestARCSwitchState(t *testing.T) {
	t.Parallel()
	sess := newFakeSession()
	bus := dispatcher.New()

	var mu sync.Mutex
	var calls []capturedPublish

	sw := NewARCSwitch(sess)
	sw.logger = zaptest.NewLogger(t)
	sw.publish = capture(&calls, &mu)
	assert.False(t, sw.On())

	sw.Activate(bus)
	mu.Lock()
	require.Len(t, calls, 1)
	assert.Equal(t, "off", calls[0].fields[model.FieldState])
	mu.Unlock()

	sess.mu.Lock()
	sess.device.ARCEnabled = true
	sess.mu.Unlock()
	bus.Publish("aa:bb:cc:dd:ee:ff")
	mu.Lock()
	require.Len(t, calls, 2)
	assert.Equal(t, "on", calls[1].fields[model.FieldState])
	mu.Unlock()
	assert.True(t, sw.On())

	sw.Deactivate()
}
