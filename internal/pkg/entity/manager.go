package entity

import (
	"github.com/anicoll/anthem-integration/internal/pkg/dispatcher"
	"github.com/anicoll/anthem-integration/internal/pkg/model"
	"github.com/anicoll/anthem-integration/internal/pkg/publisher"
)

// Entity is anything with a bus-scoped lifetime: subscribed while active,
// guaranteed silent once deactivated.
type Entity interface {
	Activate(bus *dispatcher.Bus)
	Deactivate()
	Model() *model.Entity
}

// BuildAll creates one observer per zone of a ready session, plus the ARC
// switch when the device reports room correction support.
func BuildAll(sess session) []Entity {
	entities := make([]Entity, 0)
	for _, zone := range sess.Zones() {
		entities = append(entities, NewZoneEntity(sess, zone))
	}
	if sess.Capabilities().ARC {
		entities = append(entities, NewARCSwitch(sess))
	}
	return entities
}

// RegisterAll announces every entity to the registered publishers.
func RegisterAll(entities []Entity) error {
	for _, e := range entities {
		if err := publisher.RegisterEntity(e.Model()); err != nil {
			return err
		}
	}
	return nil
}

// ActivateAll pushes initial state and subscribes every entity.
func ActivateAll(entities []Entity, bus *dispatcher.Bus) {
	for _, e := range entities {
		e.Activate(bus)
	}
}

// DeactivateAll unsubscribes every entity, blocking on in-flight deliveries.
func DeactivateAll(entities []Entity) {
	for _, e := range entities {
		e.Deactivate()
	}
}
