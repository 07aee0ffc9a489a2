package entity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/internal/pkg/contxt"
	"github.com/anicoll/anthem-integration/internal/pkg/dispatcher"
	"github.com/anicoll/anthem-integration/internal/pkg/model"
	"github.com/anicoll/anthem-integration/internal/pkg/publisher"
)

// ARCSwitch exposes the automatic room correction toggle. Only built when
// the device reports the capability.
type ARCSwitch struct {
	session session
	entity  *model.Entity
	sub     *dispatcher.Subscription
	publish publishFunc
	logger  *zap.Logger
}

func NewARCSwitch(sess session) *ARCSwitch {
	info := sess.DeviceInfo()
	return &ARCSwitch{
		session: sess,
		entity: &model.Entity{
			ID:   fmt.Sprintf("%s_arc", info.MAC),
			Name: fmt.Sprintf("%s ARC", info.Name),
			Kind: model.EntityKindSwitch,
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

func (s *ARCSwitch) Model() *model.Entity {
	return s.entity
}

func (s *ARCSwitch) Activate(bus *dispatcher.Bus) {
	s.refresh()
	s.sub = bus.Subscribe(s.entity.Device.MAC, s.refresh)
}

func (s *ARCSwitch) Deactivate() {
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
}

func (s *ARCSwitch) On() bool {
	return s.session.DeviceState().ARCEnabled
}

func (s *ARCSwitch) refresh() {
	state := "off"
	if s.On() {
		state = "on"
	}
	fields := map[string]string{model.FieldState: state}
	if err := s.publish(contxt.NewContext(publishTimeout), s.entity, fields); err != nil {
		s.logger.Error("failed to publish arc state", zap.Error(err))
	}
}
