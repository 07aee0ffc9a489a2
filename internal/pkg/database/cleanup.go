package database

import (
	"context"
	"time"
)

// Cleanup removes recorded states older than a week.
func (db *Database) Cleanup(ctx context.Context) error {
	if _, err := db.conn.Exec(ctx, "DELETE FROM State WHERE time_stamp < $1", time.Now().AddDate(0, 0, -8)); err != nil {
		return err
	}
	return nil
}
