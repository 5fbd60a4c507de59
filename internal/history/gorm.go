package history

import (
	"context"
	"errors"
	"time"

	"github.com/moznion/go-optional"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rxtech-lab/argo-signal/internal/types"
	argoErrors "github.com/rxtech-lab/argo-signal/pkg/errors"
)

// SignalModel is the persisted form of an Entry.
type SignalModel struct {
	ID         uint      `gorm:"primaryKey"`
	Symbol     string    `gorm:"size:32;not null;index:signal_sym_tf,priority:1"`
	Timeframe  string    `gorm:"size:8;not null;index:signal_sym_tf,priority:2"`
	Signal     string    `gorm:"size:16;not null"`
	Rule       string    `gorm:"size:32"`
	Reason     string    `gorm:"size:255"`
	Price      float64   `gorm:"not null"`
	CandleTime time.Time `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null"`
}

func (SignalModel) TableName() string {
	return "signal_history"
}

func toModel(e Entry) SignalModel {
	return SignalModel{
		Symbol:     e.Symbol,
		Timeframe:  string(e.Timeframe),
		Signal:     string(e.Signal),
		Rule:       e.Rule,
		Reason:     e.Reason,
		Price:      e.Price,
		CandleTime: e.CandleTime,
		RecordedAt: e.RecordedAt,
	}
}

func (m SignalModel) toEntry() Entry {
	return Entry{
		Symbol:     m.Symbol,
		Timeframe:  types.Timeframe(m.Timeframe),
		Signal:     types.SignalType(m.Signal),
		Rule:       m.Rule,
		Reason:     m.Reason,
		Price:      m.Price,
		CandleTime: m.CandleTime.UTC(),
		RecordedAt: m.RecordedAt.UTC(),
	}
}

// GormStore is a Store backed by any GORM database.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) a SQLite database at path and migrates the schema.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, argoErrors.Wrapf(argoErrors.ErrCodeHistoryWriteFailed, err, "failed to open signal history at %s", path)
	}

	// every new connection to ":memory:" would see an empty database
	if path == ":memory:" {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	return NewGormStore(db)
}

// NewGormStore migrates the schema on db and returns a store using it.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&SignalModel{}); err != nil {
		return nil, argoErrors.Wrap(argoErrors.ErrCodeHistoryWriteFailed, "failed to migrate signal history", err)
	}

	return &GormStore{db: db, now: time.Now}, nil
}

func (s *GormStore) Last(ctx context.Context, symbol string, timeframe types.Timeframe) (optional.Option[Entry], error) {
	var row SignalModel

	err := s.db.WithContext(ctx).
		Where("symbol = ? AND timeframe = ?", symbol, string(timeframe)).
		Order("id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return optional.None[Entry](), nil
	}

	if err != nil {
		return optional.None[Entry](), argoErrors.Wrapf(argoErrors.ErrCodeHistoryQueryFailed, err, "failed to read last signal for %s %s", symbol, timeframe)
	}

	return optional.Some(row.toEntry()), nil
}

func (s *GormStore) Record(ctx context.Context, entry Entry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = s.now()
	}

	row := toModel(entry)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return argoErrors.Wrapf(argoErrors.ErrCodeHistoryWriteFailed, err, "failed to record signal for %s %s", entry.Symbol, entry.Timeframe)
	}

	return nil
}

func (s *GormStore) List(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) ([]Entry, error) {
	var rows []SignalModel

	q := s.db.WithContext(ctx).
		Where("symbol = ? AND timeframe = ?", symbol, string(timeframe)).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&rows).Error; err != nil {
		return nil, argoErrors.Wrapf(argoErrors.ErrCodeHistoryQueryFailed, err, "failed to list signals for %s %s", symbol, timeframe)
	}

	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntry())
	}

	return out, nil
}

// Close closes the underlying connection.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
