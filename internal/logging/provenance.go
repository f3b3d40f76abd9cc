package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const turnLogSchema = `
CREATE TABLE IF NOT EXISTS turn_log (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    turn_id          TEXT NOT NULL,
    conversation_id  TEXT NOT NULL,
    request_type     TEXT NOT NULL,
    action           TEXT NOT NULL,
    reason           TEXT,
    decision_context TEXT,
    record_json      TEXT,
    created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turn_log_conversation ON turn_log(conversation_id, id);
`

// EnsureSchema creates the turn_log table if needed.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(turnLogSchema); err != nil {
		return fmt.Errorf("create turn_log table: %w", err)
	}
	return nil
}

// #endregion schema

// #region log-turn
// LogTurn writes a provenance entry to the turn_log table.
func LogTurn(db *sql.DB, entry TurnEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO turn_log (turn_id, conversation_id, request_type, action, reason, decision_context, record_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TurnID,
		entry.ConversationID,
		entry.RequestType,
		entry.Action,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.DecisionContext),
		nullIfEmpty(entry.RecordJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}

// #endregion log-turn

// #region read-turns
// Turns returns the logged turns of a conversation, oldest first. limit <= 0
// returns all of them.
func Turns(db *sql.DB, conversationID string, limit int) ([]TurnEntry, error) {
	query := `SELECT turn_id, conversation_id, request_type, action,
		COALESCE(reason, ''), COALESCE(decision_context, ''), COALESCE(record_json, ''), created_at
		FROM turn_log WHERE conversation_id = ? ORDER BY id`
	args := []any{conversationID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []TurnEntry
	for rows.Next() {
		var e TurnEntry
		var ts string
		if err := rows.Scan(&e.TurnID, &e.ConversationID, &e.RequestType, &e.Action,
			&e.Reason, &e.DecisionContext, &e.RecordJSON, &ts); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return out, nil
}

// #endregion read-turns

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
