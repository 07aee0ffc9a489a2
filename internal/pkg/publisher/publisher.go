package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	registeredPublishers = make(map[string]publisher)
	lastValues           sync.Map
)

type publisher interface {
	// Write delivers field rows to the backing sink.
	Write(ctx context.Context, data []map[string]any) error
	RegisterEntity(entity *model.Entity) error
}

func RegisterPublisher(name string, publisher publisher) error {
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = publisher
	return nil
}

// PublishState forwards an entity's current field values to every registered
// sink. Fields whose value has not changed since the last publish are
// suppressed; observers recompute everything on every notification, so most
// publishes carry only a handful of rows.
func PublishState(ctx context.Context, entity *model.Entity, fields map[string]string) error {
	identifier := entity.Slug()
	count := 0
	data := make([]map[string]any, 0, len(fields))
	for fieldSlug, value := range fields {
		if !shouldUpdate(identifier, fieldSlug, value) {
			continue
		}
		count++
		data = append(data, map[string]any{
			"value":      value,
			"slug":       fieldSlug,
			"timestamp":  time.Now(),
			"identifier": identifier,
		})
	}
	if len(data) == 0 {
		return nil
	}
	for name, publisher := range registeredPublishers {
		if err := publisher.Write(ctx, data); err != nil {
			zap.L().Error("failed to publish state", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("updated entity fields", zap.Int("count", count), zap.String("publisher", name))
	}
	return nil
}

func RegisterEntity(entity *model.Entity) error {
	for name, publisher := range registeredPublishers {
		if err := publisher.RegisterEntity(entity); err != nil {
			zap.L().Error("failed to register entity", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("registered entity", zap.String("entity", entity.ID), zap.String("publisher", name))
	}
	return nil
}

func shouldUpdate(identifier, fieldSlug, newValue string) bool {
	key := fmt.Sprintf("%s_%s", identifier, fieldSlug)
	oldValue, exists := lastValues.Load(key)
	if exists && strings.EqualFold(newValue, oldValue.(string)) {
		return false
	}
	if !exists {
		zap.L().Info("configured field", zap.String("entity", identifier), zap.String("field", fieldSlug), zap.String("value", newValue))
	}
	lastValues.Store(key, newValue)
	return true
}

// reset clears registry and suppression state between tests.
func reset() {
	registeredPublishers = make(map[string]publisher)
	lastValues = sync.Map{}
}
