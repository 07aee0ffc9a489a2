package entity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
	"github.com/anicoll/anthem-integration/internal/pkg/contxt"
	"github.com/anicoll/anthem-integration/internal/pkg/dispatcher"
	"github.com/anicoll/anthem-integration/internal/pkg/model"
	"github.com/anicoll/anthem-integration/internal/pkg/publisher"
)

const publishTimeout = 5 * time.Second

// session is the read side of a device session, held by every entity as a
// non-owning reference.
type session interface {
	Zone(number int) (avr.ZoneState, bool)
	Zones() []int
	DeviceInfo() avr.DeviceInfo
	DeviceState() avr.DeviceState
	Capabilities() avr.Capabilities
}

type publishFunc func(ctx context.Context, entity *model.Entity, fields map[string]string) error

// ZoneEntity observes one zone of one device. While activated it holds a
// live bus subscription and pushes a freshly projected view outward on every
// device notification.
type ZoneEntity struct {
	session session
	zone    int
	entity  *model.Entity
	sub     *dispatcher.Subscription
	publish publishFunc
	logger  *zap.Logger
}

func NewZoneEntity(sess session, zone int) *ZoneEntity {
	info := sess.DeviceInfo()
	uniqueID := info.MAC
	name := info.Name
	if zone > 1 {
		uniqueID = fmt.Sprintf("%s_%d", info.MAC, zone)
		name = fmt.Sprintf("%s zone %d", info.Name, zone)
	}
	return &ZoneEntity{
		session: sess,
		zone:    zone,
		entity: &model.Entity{
			ID:   uniqueID,
			Name: name,
			Kind: model.EntityKindZone,
			Zone: zone,
			Device: model.Device{
				MAC:   info.MAC,
				Model: info.Model,
				Name:  info.Name,
			},
		},
		publish: publisher.PublishState,
		logger:  zap.L(),
	}
}

func (e *ZoneEntity) Model() *model.Entity {
	return e.entity
}

// Activate pushes the initial state and subscribes for device notifications.
func (e *ZoneEntity) Activate(bus *dispatcher.Bus) {
	e.refresh()
	e.sub = bus.Subscribe(e.entity.Device.MAC, e.refresh)
}

// Deactivate tears the subscription down; no state is pushed afterwards.
func (e *ZoneEntity) Deactivate() {
	if e.sub != nil {
		e.sub.Unsubscribe()
		e.sub = nil
	}
}

// View recomputes the projection from the session's current state.
func (e *ZoneEntity) View() ZoneView {
	zone, _ := e.session.Zone(e.zone)
	return Project(zone, e.session.DeviceState(), e.session.Capabilities())
}

func (e *ZoneEntity) refresh() {
	view := e.View()
	if err := e.publish(contxt.NewContext(publishTimeout), e.entity, stateFields(view)); err != nil {
		e.logger.Error("failed to publish zone state", zap.Error(err), zap.Int("zone", e.zone))
	}
}

func stateFields(view ZoneView) map[string]string {
	fields := map[string]string{
		model.FieldState:       view.Power,
		model.FieldVolume:      strconv.FormatFloat(view.Volume, 'f', 2, 64),
		model.FieldMuted:       strconv.FormatBool(view.Muted),
		model.FieldSource:      view.Source,
		model.FieldSourceList:  strings.Join(view.SourceList, ", "),
		model.FieldResolution:  view.VideoResolution,
		model.FieldAudioFormat: view.AudioFormat,
	}
	if view.SoundModeList != nil {
		fields[model.FieldSoundMode] = view.SoundMode
		fields[model.FieldSoundModeList] = strings.Join(view.SoundModeList, ", ")
	} else {
		// explicit absence, not a stale carry-over
		fields[model.FieldSoundMode] = ""
		fields[model.FieldSoundModeList] = ""
	}
	return fields
}
