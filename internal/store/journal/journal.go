// Package journal persists generated signals and applied stop modifications to
// SQLite, so operators can audit what the unit saw and did after the fact.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stoppilot/internal/risk"
	"stoppilot/internal/signal"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Journal is the write/read surface the tick loops and the HTTP API use. A nil
// *Store satisfies it as a no-op, which is how journaling is disabled.
type Journal interface {
	AppendSignal(ctx context.Context, traceID string, sig signal.Signal) error
	AppendRiskAction(ctx context.Context, traceID string, d risk.Decision, at time.Time) error
	ListRecentSignals(ctx context.Context, symbol string, limit int) ([]SignalRecord, error)
	ListRecentRiskActions(ctx context.Context, ticket string, limit int) ([]RiskActionRecord, error)
}

// SignalRecord is a journaled signal row.
type SignalRecord struct {
	TraceID     string
	Symbol      string
	Score       int
	Confidence  int
	Action      string
	Quality     string
	Reasons     []string
	GeneratedAt time.Time
}

// RiskActionRecord is a journaled stop modification.
type RiskActionRecord struct {
	TraceID    string
	Ticket     string
	Symbol     string
	Kind       string
	OldStop    float64
	NewStop    float64
	ProfitPips float64
	AppliedAt  time.Time
}

// Store implements Journal over Gorm + SQLite.
type Store struct {
	db *gorm.DB
}

var _ Journal = (*Store)(nil)

// NewStore opens (or creates) the journal database at path.
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal store requires path")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&signalModel{}, &riskActionModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: small pool keeps HTTP reads possible without piling up
	// writer lock contention.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) AppendSignal(ctx context.Context, traceID string, sig signal.Signal) error {
	if s == nil || s.db == nil {
		return nil
	}
	reasons, _ := json.Marshal(sig.Reasons)
	m := signalModel{
		TraceID:     strings.TrimSpace(traceID),
		Symbol:      strings.ToUpper(strings.TrimSpace(sig.Symbol)),
		Score:       sig.Score,
		Confidence:  sig.Confidence,
		Action:      string(sig.Action),
		Quality:     string(sig.Quality),
		Reasons:     datatypes.JSON(reasons),
		GeneratedAt: sig.GeneratedAt.UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *Store) AppendRiskAction(ctx context.Context, traceID string, d risk.Decision, at time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}
	m := riskActionModel{
		TraceID:    strings.TrimSpace(traceID),
		Ticket:     strings.TrimSpace(d.Ticket),
		Symbol:     strings.ToUpper(strings.TrimSpace(d.Symbol)),
		Kind:       string(d.Kind),
		OldStop:    d.OldStop,
		NewStop:    d.NewStop,
		ProfitPips: d.ProfitPips,
		AppliedAt:  at.UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *Store) ListRecentSignals(ctx context.Context, symbol string, limit int) ([]SignalRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := s.db.WithContext(ctx).Model(&signalModel{})
	if sym := strings.ToUpper(strings.TrimSpace(symbol)); sym != "" {
		query = query.Where("symbol = ?", sym)
	}
	var models []signalModel
	if err := query.
		Order("generated_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]SignalRecord, 0, len(models))
	for _, m := range models {
		out = append(out, signalModelToRecord(m))
	}
	return out, nil
}

func (s *Store) ListRecentRiskActions(ctx context.Context, ticket string, limit int) ([]RiskActionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := s.db.WithContext(ctx).Model(&riskActionModel{})
	if t := strings.TrimSpace(ticket); t != "" {
		query = query.Where("ticket = ?", t)
	}
	var models []riskActionModel
	if err := query.
		Order("applied_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]RiskActionRecord, 0, len(models))
	for _, m := range models {
		out = append(out, RiskActionRecord{
			TraceID:    m.TraceID,
			Ticket:     m.Ticket,
			Symbol:     m.Symbol,
			Kind:       m.Kind,
			OldStop:    m.OldStop,
			NewStop:    m.NewStop,
			ProfitPips: m.ProfitPips,
			AppliedAt:  time.UnixMilli(m.AppliedAt),
		})
	}
	return out, nil
}

type signalModel struct {
	ID          int64          `gorm:"column:id;primaryKey"`
	TraceID     string         `gorm:"column:trace_id;index"`
	Symbol      string         `gorm:"column:symbol;index"`
	Score       int            `gorm:"column:score"`
	Confidence  int            `gorm:"column:confidence"`
	Action      string         `gorm:"column:action"`
	Quality     string         `gorm:"column:quality"`
	Reasons     datatypes.JSON `gorm:"column:reasons"`
	GeneratedAt int64          `gorm:"column:generated_at;index"`
}

func (signalModel) TableName() string { return "signal_journal" }

type riskActionModel struct {
	ID         int64   `gorm:"column:id;primaryKey"`
	TraceID    string  `gorm:"column:trace_id;index"`
	Ticket     string  `gorm:"column:ticket;index"`
	Symbol     string  `gorm:"column:symbol;index"`
	Kind       string  `gorm:"column:kind"`
	OldStop    float64 `gorm:"column:old_stop"`
	NewStop    float64 `gorm:"column:new_stop"`
	ProfitPips float64 `gorm:"column:profit_pips"`
	AppliedAt  int64   `gorm:"column:applied_at;index"`
}

func (riskActionModel) TableName() string { return "risk_action_journal" }

func signalModelToRecord(m signalModel) SignalRecord {
	var reasons []string
	if len(m.Reasons) > 0 {
		_ = json.Unmarshal(m.Reasons, &reasons)
	}
	return SignalRecord{
		TraceID:     m.TraceID,
		Symbol:      m.Symbol,
		Score:       m.Score,
		Confidence:  m.Confidence,
		Action:      m.Action,
		Quality:     m.Quality,
		Reasons:     reasons,
		GeneratedAt: time.UnixMilli(m.GeneratedAt),
	}
}
