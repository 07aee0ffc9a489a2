package database

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
)

type Database struct {
	conn *pgx.Conn
	io.Closer
}

func NewDatabase(conn *pgx.Conn) *Database {
	return &Database{
		conn: conn,
	}
}

func (db *Database) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close(context.Background())
}

// State is a single recorded value for one entity field, e.g. the volume of
// zone 2 at a point in time.
type State struct {
	Id         int64     `json:"id"`
	TimeStamp  time.Time `json:"timestamp"`
	Value      string    `json:"value"`
	Identifier string    `json:"identifier"`
	Slug       string    `json:"slug"`
}

type States []State

func scanStates(rows pgx.Rows) (States, error) {
	var states States
	for rows.Next() {
		var state State
		if err := rows.Scan(&state.Id, &state.TimeStamp, &state.Value, &state.Identifier, &state.Slug); err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		if err == pgx.ErrNoRows {
			return states, nil
		}
		return nil, err
	}

	return states, nil
}
