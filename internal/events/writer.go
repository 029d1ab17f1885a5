package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// Writer appends audit rows to the events table inside a caller's transaction.
type Writer struct {
	Now func() time.Time
}

type Payload map[string]any

// Event is one row of the audit trail.
type Event struct {
	Seq     int64   `json:"seq"`
	TS      string  `json:"ts"`
	Type    string  `json:"type"`
	TaskID  int     `json:"task_id"`
	Payload Payload `json:"payload"`
}

func (w Writer) Append(ctx context.Context, tx *sql.Tx, evtType string, taskID int, payload Payload) error {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	ts := now().UTC().Format(time.RFC3339Nano)
	if payload == nil {
		payload = Payload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(ts,type,task_id,payload_json) VALUES (?,?,?,?)`,
		ts, evtType, taskID, string(data))
	return err
}

// List returns events oldest first.
func List(ctx context.Context, db *sql.DB) ([]Event, error) {
	rows, err := db.QueryContext(ctx, `SELECT seq,ts,type,task_id,payload_json FROM events ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Event{}
	for rows.Next() {
		var e Event
		var raw string
		if err := rows.Scan(&e.Seq, &e.TS, &e.Type, &e.TaskID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &e.Payload); err != nil {
			return nil, fmt.Errorf("decode event %d payload: %w", e.Seq, err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
