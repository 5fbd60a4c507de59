package marker

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// DuckDBMarker implements Marker on an in-memory DuckDB database and exports
// its tables as Parquet.
type DuckDBMarker struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBMarker creates a new instance of DuckDBMarker.
func NewDuckDBMarker(log *logger.Logger) (*DuckDBMarker, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeMarkerNotAvailable, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeMarkerNotAvailable, "failed to connect to database", err)
	}

	marker := &DuckDBMarker{
		logger: log,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := marker.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return marker, nil
}

// Mark records one chart annotation.
func (m *DuckDBMarker) Mark(mark types.Mark) error {
	if m == nil || m.db == nil {
		return errors.New(errors.ErrCodeMarkerNotAvailable, "marker or database is nil")
	}

	var nextID int
	if err := m.db.QueryRow("SELECT nextval('mark_id_seq')").Scan(&nextID); err != nil {
		return errors.Wrap(errors.ErrCodeMarkerWriteFailed, "failed to get next mark ID", err)
	}

	_, err := m.sq.
		Insert("marks").
		Columns("id", "symbol", "timeframe", "time", "price", "color", "shape", "signal_type", "title", "message").
		Values(nextID, mark.Symbol, string(mark.Timeframe), mark.Time, mark.Price, string(mark.Color),
			string(mark.Shape), string(mark.Signal), mark.Title, mark.Message).
		RunWith(m.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarkerWriteFailed, "failed to insert mark", err)
	}

	return nil
}

// RecordTrade records one simulated trade.
func (m *DuckDBMarker) RecordTrade(symbol string, timeframe types.Timeframe, trade types.Trade) error {
	if m == nil || m.db == nil {
		return errors.New(errors.ErrCodeMarkerNotAvailable, "marker or database is nil")
	}

	var nextID int
	if err := m.db.QueryRow("SELECT nextval('trade_id_seq')").Scan(&nextID); err != nil {
		return errors.Wrap(errors.ErrCodeMarkerWriteFailed, "failed to get next trade ID", err)
	}

	_, err := m.sq.
		Insert("trades").
		Columns("id", "symbol", "timeframe", "side", "entry_index", "entry_time", "entry_price", "entry_signal",
			"exit_index", "exit_time", "exit_price", "exit_signal", "exit_reason", "trade_return", "is_open").
		Values(nextID, symbol, string(timeframe), string(trade.Side), trade.EntryIndex, trade.EntryTime, trade.EntryPrice,
			string(trade.EntrySignal), trade.ExitIndex, trade.ExitTime, trade.ExitPrice, string(trade.ExitSignal),
			string(trade.ExitReason), trade.Return, trade.Open).
		RunWith(m.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarkerWriteFailed, "failed to insert trade", err)
	}

	return nil
}

// GetMarks returns all recorded marks ordered by time.
func (m *DuckDBMarker) GetMarks() ([]types.Mark, error) {
	if m == nil || m.db == nil {
		return nil, errors.New(errors.ErrCodeMarkerNotAvailable, "marker or database is nil")
	}

	rows, err := m.sq.
		Select("symbol", "timeframe", "time", "price", "color", "shape", "signal_type", "title", "message").
		From("marks").
		OrderBy("time ASC", "id ASC").
		RunWith(m.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarkerNotAvailable, "failed to query marks", err)
	}
	defer rows.Close()

	var marks []types.Mark

	for rows.Next() {
		var (
			mark                                  types.Mark
			timeframe, color, shape, signalString string
		)

		if err := rows.Scan(&mark.Symbol, &timeframe, &mark.Time, &mark.Price, &color, &shape,
			&signalString, &mark.Title, &mark.Message); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarkerNotAvailable, "failed to scan mark", err)
		}

		mark.Timeframe = types.Timeframe(timeframe)
		mark.Color = types.MarkColor(color)
		mark.Shape = types.MarkShape(shape)
		mark.Signal = types.SignalType(signalString)
		marks = append(marks, mark)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarkerNotAvailable, "error iterating marks", err)
	}

	return marks, nil
}

// CountTrades returns the number of recorded trades.
func (m *DuckDBMarker) CountTrades() (int, error) {
	var count int

	row := m.sq.Select("COUNT(*)").From("trades").RunWith(m.db).QueryRow()
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeMarkerNotAvailable, "failed to count trades", err)
	}

	return count, nil
}

// Write exports marks and trades to marks.parquet and trades.parquet under dir.
func (m *DuckDBMarker) Write(dir string) (marksPath, tradesPath string, err error) {
	if m == nil || m.db == nil {
		return "", "", errors.New(errors.ErrCodeMarkerNotAvailable, "marker or database is nil")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrap(errors.ErrCodeMarkerWriteFailed, "failed to create directory", err)
	}

	marksPath = filepath.Join(dir, "marks.parquet")
	tradesPath = filepath.Join(dir, "trades.parquet")

	for table, path := range map[string]string{"marks": marksPath, "trades": tradesPath} {
		escaped := strings.ReplaceAll(path, "'", "''")
		if _, err := m.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM %s ORDER BY id) TO '%s' (FORMAT PARQUET)`, table, escaped)); err != nil {
			return "", "", errors.Wrapf(errors.ErrCodeMarkerWriteFailed, err, "failed to export %s to Parquet", table)
		}
	}

	m.logger.Info("Successfully exported marks and trades to Parquet files",
		zap.String("marks", marksPath),
		zap.String("trades", tradesPath),
	)

	return marksPath, tradesPath, nil
}

// Cleanup resets the database state.
func (m *DuckDBMarker) Cleanup() error {
	if m == nil || m.db == nil {
		return errors.New(errors.ErrCodeMarkerNotAvailable, "marker or database is nil")
	}

	_, err := m.db.Exec(`
		DROP TABLE IF EXISTS marks;
		DROP TABLE IF EXISTS trades;
		DROP SEQUENCE IF EXISTS mark_id_seq;
		DROP SEQUENCE IF EXISTS trade_id_seq;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarkerWriteFailed, "failed to cleanup marker tables", err)
	}

	return m.initialize()
}

// Close closes the database connection.
func (m *DuckDBMarker) Close() error {
	if m == nil || m.db == nil {
		return nil
	}

	return m.db.Close()
}

func (m *DuckDBMarker) initialize() error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS mark_id_seq`,
		`CREATE SEQUENCE IF NOT EXISTS trade_id_seq`,
		`CREATE TABLE IF NOT EXISTS marks (
			id INTEGER PRIMARY KEY,
			symbol TEXT,
			timeframe TEXT,
			time TIMESTAMP,
			price DOUBLE,
			color TEXT,
			shape TEXT,
			signal_type TEXT,
			title TEXT,
			message TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY,
			symbol TEXT,
			timeframe TEXT,
			side TEXT,
			entry_index INTEGER,
			entry_time TIMESTAMP,
			entry_price DOUBLE,
			entry_signal TEXT,
			exit_index INTEGER,
			exit_time TIMESTAMP,
			exit_price DOUBLE,
			exit_signal TEXT,
			exit_reason TEXT,
			trade_return DOUBLE,
			is_open BOOLEAN
		)`,
	}

	for _, stmt := range statements {
		if _, err := m.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeMarkerNotAvailable, "failed to initialize marker tables", err)
		}
	}

	return nil
}
