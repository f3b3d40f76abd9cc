// Package preference learns style preferences from user feedback on
// outfits. Feedback rows live in SQLite and are aggregated with an
// exponential recency decay. Every operation returns its error; callers
// pick between log-and-continue and failing the turn.
package preference

// #region imports
import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
)

// #endregion

// #region types

// Kind is the outfit attribute a piece of feedback is about.
type Kind string

const (
	KindColor   Kind = "color"
	KindPattern Kind = "pattern"
	KindStyle   Kind = "style"
	KindBrand   Kind = "brand"
)

// Kinds lists every attribute kind in a stable order.
var Kinds = []Kind{KindColor, KindPattern, KindStyle, KindBrand}

// Signal is the direction of the feedback.
type Signal string

const (
	SignalLiked    Signal = "liked"
	SignalDisliked Signal = "disliked"
)

// Feedback is one recorded reaction. Zero CreatedAt means now.
type Feedback struct {
	UserID    string    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	Value     string    `json:"value"`
	Signal    Signal    `json:"signal"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Weighted is an aggregated attribute value. Score is in [-1, 1]: the
// decay-weighted mean of +1 for liked and -1 for disliked.
type Weighted struct {
	Value   string  `json:"value"`
	Score   float64 `json:"score"`
	Samples int     `json:"samples"`
}

// ErrInvalidFeedback is returned by Record for an unknown kind or signal or
// an empty user or value.
var ErrInvalidFeedback = errors.New("invalid feedback")

const (
	halfLifeHours = 7.0 * 24.0
	minSamples    = 2
)

// #endregion

// #region schema

const feedbackSchema = `
CREATE TABLE IF NOT EXISTS preference_feedback (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    TEXT NOT NULL,
    kind       TEXT NOT NULL,
    value      TEXT NOT NULL,
    signal     TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

const feedbackIndex = `
CREATE INDEX IF NOT EXISTS idx_preference_feedback_lookup
ON preference_feedback(user_id, kind);
`

// #endregion

// #region memory-struct

// Memory persists feedback and answers decay-weighted queries.
type Memory struct {
	db     *sql.DB
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Memory.
type Option func(*Memory)

// WithClock sets the time source used for new rows and for decay.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(m *Memory) { m.logger = l.Named("preference") }
}

// NewMemory creates the preference_feedback table if needed.
func NewMemory(db *sql.DB, opts ...Option) (*Memory, error) {
	if _, err := db.Exec(feedbackSchema); err != nil {
		return nil, fmt.Errorf("create preference_feedback table: %w", err)
	}
	if _, err := db.Exec(feedbackIndex); err != nil {
		return nil, fmt.Errorf("create preference_feedback index: %w", err)
	}
	m := &Memory{db: db, now: func() time.Time { return time.Now().UTC() }, logger: zap.NewNop()}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// #endregion

// #region record

// Record persists one feedback row. Values are stored lowercased.
func (m *Memory) Record(ctx context.Context, fb Feedback) error {
	value := strings.ToLower(strings.TrimSpace(fb.Value))
	if fb.UserID == "" || value == "" || !validKind(fb.Kind) ||
		(fb.Signal != SignalLiked && fb.Signal != SignalDisliked) {
		return fmt.Errorf("record feedback %s=%q: %w", fb.Kind, fb.Value, ErrInvalidFeedback)
	}
	at := fb.CreatedAt
	if at.IsZero() {
		at = m.now()
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO preference_feedback (user_id, kind, value, signal, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		fb.UserID, string(fb.Kind), value, string(fb.Signal), at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	m.logger.Debug("feedback recorded",
		zap.String("user", fb.UserID),
		zap.String("kind", string(fb.Kind)),
		zap.String("value", value),
		zap.String("signal", string(fb.Signal)),
	)
	return nil
}

func validKind(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// #endregion

// #region top

// Top returns the values of kind for userID ordered by score, highest
// first. Values with fewer than two samples are left out. limit <= 0
// means no limit.
func (m *Memory) Top(ctx context.Context, userID string, kind Kind, limit int) ([]Weighted, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT value, signal, created_at
		FROM preference_feedback
		WHERE user_id = ? AND kind = ?`,
		userID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	type accum struct {
		weightedSum float64
		totalWeight float64
		count       int
	}

	now := m.now()
	byValue := make(map[string]*accum)
	for rows.Next() {
		var value, signal, createdAtStr string
		if err := rows.Scan(&value, &signal, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			continue
		}
		weight := math.Exp(-now.Sub(createdAt).Hours() / halfLifeHours)
		a, ok := byValue[value]
		if !ok {
			a = &accum{}
			byValue[value] = a
		}
		sign := 1.0
		if Signal(signal) == SignalDisliked {
			sign = -1
		}
		a.weightedSum += sign * weight
		a.totalWeight += weight
		a.count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}

	out := make([]Weighted, 0, len(byValue))
	for v, a := range byValue {
		if a.count < minSamples || a.totalWeight == 0 {
			continue
		}
		out = append(out, Weighted{Value: v, Score: a.weightedSum / a.totalWeight, Samples: a.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Value < out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Summary runs Top for every kind and folds the results into session
// preferences.
func (m *Memory) Summary(ctx context.Context, userID string, limit int) (session.Preferences, error) {
	byKind := make(map[Kind][]Weighted, len(Kinds))
	for _, k := range Kinds {
		top, err := m.Top(ctx, userID, k, 0)
		if err != nil {
			return session.Preferences{}, fmt.Errorf("summarize %s: %w", k, err)
		}
		byKind[k] = top
	}
	return ToPreferences(byKind, limit), nil
}

// #endregion

// #region convert

// ToPreferences maps aggregated feedback onto session preferences. Colors
// with a negative score become avoided colors; for the other kinds only
// positive scores count. limit caps each list, <= 0 means no cap. Kinds
// with nothing to say stay nil so a merge leaves them unset.
func ToPreferences(byKind map[Kind][]Weighted, limit int) session.Preferences {
	var p session.Preferences
	for _, w := range byKind[KindColor] {
		switch {
		case w.Score > 0:
			p.FavoriteColors = appendCapped(p.FavoriteColors, w.Value, limit)
		case w.Score < 0:
			p.AvoidColors = appendCapped(p.AvoidColors, w.Value, limit)
		}
	}
	for _, w := range byKind[KindPattern] {
		if w.Score > 0 && (limit <= 0 || len(p.Patterns) < limit) {
			p.Patterns = append(p.Patterns, outfit.Pattern(w.Value))
		}
	}
	for _, w := range byKind[KindStyle] {
		if w.Score > 0 {
			p.Styles = appendCapped(p.Styles, w.Value, limit)
		}
	}
	for _, w := range byKind[KindBrand] {
		if w.Score > 0 {
			p.Brands = appendCapped(p.Brands, w.Value, limit)
		}
	}
	return p
}

func appendCapped(list []string, v string, limit int) []string {
	if limit > 0 && len(list) >= limit {
		return list
	}
	return append(list, v)
}

// #endregion
