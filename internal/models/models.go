package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// PoolSession is a row in pool_sessions: one human-versus-bot match.
type PoolSession struct {
	ID           int            `db:"id" json:"id"`
	SessionID    string         `db:"session_id" json:"session_id"`
	SessionToken string         `db:"session_token" json:"session_token"`
	StakeAmount  int            `db:"stake_amount" json:"stake_amount"`
	Status       string         `db:"status" json:"status"`
	Outcome      sql.NullString `db:"outcome" json:"outcome,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	CompletedAt  sql.NullTime   `db:"completed_at" json:"completed_at,omitempty"`
}

// PoolShot is a row in pool_shots: one committed shot with its parameters.
type PoolShot struct {
	ID         int             `db:"id" json:"id"`
	SessionID  string          `db:"session_id" json:"session_id"`
	Seat       string          `db:"seat" json:"seat"`
	ShotNumber int             `db:"shot_number" json:"shot_number"`
	ShotData   json.RawMessage `db:"shot_data" json:"shot_data"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
