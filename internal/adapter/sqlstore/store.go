package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "github.com/lib/pq"              // registers "postgres"

	"github.com/couchcryptid/tempest-listener/internal/domain"
)

// ErrNotFound is returned by LatestOne when the table is empty.
var ErrNotFound = errors.New("no weather observations found")

// columns lists the observation columns in insert and scan order.
var columns = []string{
	"time_epoch",
	"wind_lull",
	"wind_avg",
	"wind_gust",
	"wind_direction",
	"wind_sample_interval",
	"station_pressure",
	"air_temp",
	"relative_humidity",
	"illuminance",
	"uv_index",
	"solar_radiation",
	"rain_over_prev_minute",
	"precip_type",
	"lightning_avg_distance",
	"lightning_strike_count",
	"battery_voltage",
	"report_interval",
}

// dialect captures the SQL differences between the supported drivers.
type dialect struct {
	idColumn    string
	placeholder func(n int) string
}

var dialects = map[string]dialect{
	"postgres": {
		idColumn:    "id BIGSERIAL PRIMARY KEY",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	},
	"mysql": {
		idColumn:    "id BIGINT AUTO_INCREMENT PRIMARY KEY",
		placeholder: func(int) string { return "?" },
	},
}

func (d dialect) createTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS observation (
    ` + d.idColumn + `,
    time_epoch BIGINT,
    wind_lull REAL,
    wind_avg REAL,
    wind_gust REAL,
    wind_direction INTEGER,
    wind_sample_interval INTEGER,
    station_pressure REAL,
    air_temp REAL,
    relative_humidity REAL,
    illuminance BIGINT,
    uv_index REAL,
    solar_radiation BIGINT,
    rain_over_prev_minute REAL,
    precip_type SMALLINT,
    lightning_avg_distance BIGINT,
    lightning_strike_count BIGINT,
    battery_voltage REAL,
    report_interval INTEGER
)`
}

func (d dialect) insertQuery() string {
	ph := make([]string, len(columns))
	for i := range ph {
		ph[i] = d.placeholder(i + 1)
	}
	return "INSERT INTO observation (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")"
}

func (d dialect) latestQuery() string {
	return "SELECT id, " + strings.Join(columns, ", ") + " FROM observation ORDER BY id DESC LIMIT " + d.placeholder(1)
}

// Store persists observations in a SQL database. It implements pipeline.Sink.
type Store struct {
	db          *sql.DB
	insertQuery string
	latestQuery string
	createQuery string
}

// Open connects to the database, verifies the connection and creates the
// observation table if it does not exist.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	s, err := New(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool. driver selects the SQL dialect.
func New(db *sql.DB, driver string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	return &Store{
		db:          db,
		insertQuery: d.insertQuery(),
		latestQuery: d.latestQuery(),
		createQuery: d.createTableQuery(),
	}, nil
}

// Migrate creates the observation table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.createQuery); err != nil {
		return fmt.Errorf("create observation table: %w", err)
	}
	return nil
}

// Insert appends one observation. Duplicates are stored as separate rows.
func (s *Store) Insert(ctx context.Context, w domain.Weather) error {
	if _, err := s.db.ExecContext(ctx, s.insertQuery, insertArgs(w)...); err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// Latest returns up to limit observations, newest first.
func (s *Store) Latest(ctx context.Context, limit int) ([]domain.StoredWeather, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid limit %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, s.latestQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredWeather
	for rows.Next() {
		var sw domain.StoredWeather
		if err := rows.Scan(scanDest(&sw)...); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	return out, nil
}

// LatestOne returns the newest observation or ErrNotFound.
func (s *Store) LatestOne(ctx context.Context) (domain.StoredWeather, error) {
	rows, err := s.Latest(ctx, 1)
	if err != nil {
		return domain.StoredWeather{}, err
	}
	if len(rows) == 0 {
		return domain.StoredWeather{}, ErrNotFound
	}
	return rows[0], nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func insertArgs(w domain.Weather) []any {
	return []any{
		w.TimeEpoch,
		w.WindLull,
		w.WindAvg,
		w.WindGust,
		w.WindDirection,
		w.WindSampleInterval,
		w.StationPressure,
		w.AirTemp,
		w.RelativeHumidity,
		w.Illuminance,
		w.UVIndex,
		w.SolarRadiation,
		w.RainOverPrevMinute,
		w.PrecipType,
		w.LightningAvgDistance,
		w.LightningStrikeCount,
		w.BatteryVoltage,
		w.ReportInterval,
	}
}

func scanDest(sw *domain.StoredWeather) []any {
	return []any{
		&sw.ID,
		&sw.TimeEpoch,
		&sw.WindLull,
		&sw.WindAvg,
		&sw.WindGust,
		&sw.WindDirection,
		&sw.WindSampleInterval,
		&sw.StationPressure,
		&sw.AirTemp,
		&sw.RelativeHumidity,
		&sw.Illuminance,
		&sw.UVIndex,
		&sw.SolarRadiation,
		&sw.RainOverPrevMinute,
		&sw.PrecipType,
		&sw.LightningAvgDistance,
		&sw.LightningStrikeCount,
		&sw.BatteryVoltage,
		&sw.ReportInterval,
	}
}
