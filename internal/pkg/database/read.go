package database

import (
	"context"
	"time"
)

func (db *Database) GetStates(ctx context.Context, identifier, slug string, from, to *time.Time) (States, error) {
	if from == nil || to == nil {
		from = func() *time.Time {
			t := time.Now().AddDate(0, 0, -2)
			return &t
		}()
		to = func() *time.Time {
			t := time.Now()
			return &t
		}()
	}
	const query = `
	SELECT id, time_stamp, value, identifier, slug
	FROM State
	WHERE identifier = $1 AND slug = $2 AND time_stamp BETWEEN $3 AND $4
	ORDER BY time_stamp DESC;
	`

	rows, err := db.conn.Query(ctx, query, identifier, slug, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states, err := scanStates(rows)
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (db *Database) GetLatestStates(ctx context.Context) (States, error) {
	const query = `
	SELECT DISTINCT ON (identifier, slug) id, time_stamp, value, identifier, slug
	FROM State
	ORDER BY identifier, slug, time_stamp DESC;
	`

	rows, err := db.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states, err := scanStates(rows)
	if err != nil {
		return nil, err
	}
	return states, nil
}
