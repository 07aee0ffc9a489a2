package database

import (
	"context"

	"github.com/anicoll/anthem-integration/internal/pkg/model"
)

func (db *Database) Write(ctx context.Context, data []map[string]any) error {
	tx, err := db.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, record := range data {
		if _, err := tx.Exec(ctx, `
			INSERT INTO State (time_stamp, value, identifier, slug)
			VALUES ($1, $2, $3, $4)
		`, record["timestamp"], record["value"], record["identifier"], record["slug"]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (db *Database) RegisterEntity(entity *model.Entity) error {
	_, err := db.conn.Exec(context.Background(), `
		INSERT INTO Entity (id, name, kind, zone, device_mac, device_model)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING;`, entity.Slug(), entity.Name, entity.Kind, entity.Zone, entity.Device.MAC, entity.Device.Model)
	if err != nil {
		return err
	}

	return nil
}
