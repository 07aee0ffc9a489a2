package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anicoll/anthem-integration/internal/pkg/model"
)

func (s *Service) Write(ctx context.Context, data []map[string]any) error {
	for _, d := range data {
		if err := s.publishField(d); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEntity announces the entity on the discovery prefix so the
// automation platform materialises it before any state arrives.
func (s *Service) RegisterEntity(entity *model.Entity) error {
	identifier := entity.Slug()
	if _, exists := s.configuredEntities[identifier]; exists {
		return nil
	}

	topic := fmt.Sprintf("%s/%s/%s/config", s.cfg.DiscoveryPrefix, component(entity.Kind), identifier)
	payload, err := json.Marshal(s.registerMsg(entity))
	if err != nil {
		return err
	}

	token := s.client.Publish(topic, 1, true, payload)
	if err := token.Error(); err != nil {
		return err
	}
	if res := token.WaitTimeout(time.Second * 5); res {
		s.configuredEntities[identifier] = struct{}{}
	}
	return nil
}

func (s *Service) publishField(data map[string]any) error {
	topic := fmt.Sprintf("%s/sensor/%s/%s/state", s.cfg.DiscoveryPrefix, data["identifier"], data["slug"])

	payload, err := json.Marshal(map[string]string{
		"value": data["value"].(string),
	})
	if err != nil {
		return err
	}

	token := s.client.Publish(topic, 0, false, payload)
	if res := token.WaitTimeout(time.Second * 10); res {
		return nil
	}
	return token.Error()
}

func component(kind model.EntityKind) string {
	if kind == model.EntityKindSwitch {
		return "switch"
	}
	return "sensor"
}

func (s *Service) registerMsg(entity *model.Entity) model.RegisterMessage {
	identifier := entity.Slug()
	return model.RegisterMessage{
		Tilda:      fmt.Sprintf("%s/%s/%s", s.cfg.DiscoveryPrefix, component(entity.Kind), identifier),
		Name:       entity.Name,
		ID:         identifier,
		StateTopic: "~/state",
		Device: model.RegisterDevice{
			Name:         entity.Device.Name,
			Identifiers:  []string{entity.Device.MAC},
			Model:        entity.Device.Model,
			Manufacturer: "Anthem",
		},
	}
}
