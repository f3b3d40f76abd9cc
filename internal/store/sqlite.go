package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	conversation_id TEXT PRIMARY KEY,
	cursor          INTEGER NOT NULL,
	state_json      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	snapshot_id       TEXT NOT NULL,
	conversation_id   TEXT NOT NULL,
	position          INTEGER NOT NULL,
	outfit_state      TEXT NOT NULL,
	items_json        TEXT NOT NULL,
	image_ref         TEXT,
	source_message_id TEXT,
	created_at        TEXT NOT NULL,
	PRIMARY KEY (conversation_id, position),
	FOREIGN KEY (conversation_id) REFERENCES sessions(conversation_id) ON DELETE CASCADE
);
`

// #endregion schema

// #region store-struct
// SQLiteStore persists sessions in SQLite. The whole exported state is kept
// as JSON; snapshots are also written one row each for browsing.
type SQLiteStore struct {
	db     *sql.DB
	locks  session.KeyLocks
	logger *zap.Logger
}

// Summary is one row of List.
type Summary struct {
	ConversationID string    `json:"conversation_id"`
	Cursor         int       `json:"cursor"`
	Snapshots      int       `json:"snapshots"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// #endregion store-struct

// #region constructor
// NewSQLiteStore opens a SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger.Named("store")}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB so the provenance log and preference
// memory can share the file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region load
func (s *SQLiteStore) Load(ctx context.Context, conversationID string) (session.State, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state_json FROM sessions WHERE conversation_id = ?`, conversationID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return session.State{}, false, nil
	}
	if err != nil {
		return session.State{}, false, fmt.Errorf("get session %s: %w", conversationID, err)
	}
	var st session.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return session.State{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	if st.History == nil {
		st.History = []outfit.Snapshot{}
	}
	return st, true, nil
}

// #endregion load

// #region save
// Save upserts the session and rewrites its snapshot rows in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, st session.State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (conversation_id, cursor, state_json, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
		   cursor = excluded.cursor, state_json = excluded.state_json, updated_at = excluded.updated_at`,
		st.ConversationID, st.Cursor, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE conversation_id = ?`, st.ConversationID); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	for i, snap := range st.History {
		itemsJSON, err := json.Marshal(snap.Items)
		if err != nil {
			return fmt.Errorf("marshal items: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshots (snapshot_id, conversation_id, position, outfit_state, items_json, image_ref, source_message_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.ID, st.ConversationID, i, string(snap.State), string(itemsJSON),
			nullIfEmpty(snap.ImageRef), nullIfEmpty(snap.SourceMessageID),
			snap.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("session saved",
		zap.String("conversation_id", st.ConversationID),
		zap.Int("cursor", st.Cursor),
		zap.Int("snapshots", len(st.History)))
	return nil
}

// #endregion save

// #region delete-update
func (s *SQLiteStore) Delete(ctx context.Context, conversationID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// foreign_keys is per connection, so don't lean on the cascade
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Update(ctx context.Context, conversationID string, fn func(session.State) (session.State, error)) (session.State, error) {
	return session.UpdateLocked(ctx, &s.locks, s, conversationID, fn)
}

// #endregion delete-update

// #region browse
// List returns stored sessions, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.conversation_id, s.cursor, s.updated_at, COUNT(p.position)
		 FROM sessions s LEFT JOIN snapshots p ON p.conversation_id = s.conversation_id
		 GROUP BY s.conversation_id ORDER BY s.updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var updated string
		if err := rows.Scan(&sum.ConversationID, &sum.Cursor, &updated, &sum.Snapshots); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Snapshots returns one conversation's history in order. A conversation
// with no session row yields session.ErrNotFound.
func (s *SQLiteStore) Snapshots(ctx context.Context, conversationID string) ([]outfit.Snapshot, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE conversation_id = ?`, conversationID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, conversationID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot_id, outfit_state, items_json, image_ref, source_message_id, created_at
		 FROM snapshots WHERE conversation_id = ? ORDER BY position`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := []outfit.Snapshot{}
	for rows.Next() {
		snap := outfit.Snapshot{ConversationID: conversationID}
		var state, itemsJSON, created string
		var imageRef, sourceMsg sql.NullString
		if err := rows.Scan(&snap.ID, &state, &itemsJSON, &imageRef, &sourceMsg, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		snap.State = outfit.StateTag(state)
		if err := json.Unmarshal([]byte(itemsJSON), &snap.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		snap.ImageRef = imageRef.String
		snap.SourceMessageID = sourceMsg.String
		snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// #endregion browse

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
