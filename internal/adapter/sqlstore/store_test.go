package sqlstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/couchcryptid/tempest-listener/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWeather = domain.Weather{
	TimeEpoch:            1588186800,
	WindLull:             0,
	WindAvg:              2.6,
	WindGust:             4.6,
	WindDirection:        187,
	WindSampleInterval:   3,
	StationPressure:      1017.57,
	AirTemp:              22.37,
	RelativeHumidity:     50.26,
	Illuminance:          328,
	UVIndex:              0.03,
	SolarRadiation:       3,
	RainOverPrevMinute:   0,
	PrecipType:           domain.PrecipRain,
	LightningAvgDistance: 12,
	LightningStrikeCount: 2,
	BatteryVoltage:       2.41,
	ReportInterval:       1,
}

func newMockStore(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := New(db, driver)
	require.NoError(t, err)
	return s, mock
}

func TestDialect_Queries(t *testing.T) {
	pg := dialects["postgres"]
	assert.True(t, strings.HasSuffix(pg.insertQuery(), "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)"))
	assert.True(t, strings.HasSuffix(pg.latestQuery(), "ORDER BY id DESC LIMIT $1"))
	assert.Contains(t, pg.createTableQuery(), "BIGSERIAL")

	my := dialects["mysql"]
	assert.Equal(t, 18, strings.Count(my.insertQuery(), "?"))
	assert.True(t, strings.HasSuffix(my.latestQuery(), "LIMIT ?"))
	assert.Contains(t, my.createTableQuery(), "AUTO_INCREMENT")
}

func TestNew_UnsupportedDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, "sqlite3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite3")
}

func TestStore_Migrate(t *testing.T) {
	s, mock := newMockStore(t, "postgres")
	mock.ExpectExec(dialects["postgres"].createTableQuery()).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Insert(t *testing.T) {
	s, mock := newMockStore(t, "postgres")
	// Listed by hand so the column order is checked independently of insertArgs.
	mock.ExpectExec(dialects["postgres"].insertQuery()).
		WithArgs(
			int64(1588186800), float32(0), float32(2.6), float32(4.6),
			uint16(187), uint16(3), float32(1017.57), float32(22.37), float32(50.26),
			uint32(328), float32(0.03), uint32(3), float32(0), domain.PrecipRain,
			uint32(12), uint32(2), float32(2.41), uint16(1),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Insert(context.Background(), testWeather))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertArgs_MatchColumns(t *testing.T) {
	args := insertArgs(testWeather)
	require.Len(t, args, len(columns))
	assert.Equal(t, testWeather.TimeEpoch, args[0])
	assert.Equal(t, testWeather.PrecipType, args[13])
	assert.Equal(t, testWeather.ReportInterval, args[17])
}

func TestStore_InsertError(t *testing.T) {
	s, mock := newMockStore(t, "mysql")
	mock.ExpectExec(dialects["mysql"].insertQuery()).
		WillReturnError(errors.New("disk full"))

	err := s.Insert(context.Background(), testWeather)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert observation")
	assert.Contains(t, err.Error(), "disk full")
}

func TestStore_Latest(t *testing.T) {
	s, mock := newMockStore(t, "postgres")

	rows := sqlmock.NewRows(append([]string{"id"}, columns...)).
		AddRow(int64(7), int64(1588186800), 0.0, 2.6, 4.6, int64(187), int64(3), 1017.57, 22.37, 50.26,
			int64(328), 0.03, int64(3), 0.0, int64(1), int64(12), int64(2), 2.41, int64(1)).
		AddRow(int64(6), int64(1588186740), 0.0, 1.0, 2.0, int64(90), int64(3), 1017.5, 22.0, 51.0,
			int64(300), 0.0, int64(2), 0.0, int64(9), int64(0), int64(0), 2.4, int64(1))
	mock.ExpectQuery(dialects["postgres"].latestQuery()).WithArgs(2).WillReturnRows(rows)

	got, err := s.Latest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	if diff := cmp.Diff(domain.StoredWeather{ID: 7, Weather: testWeather}, got[0]); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(6), got[1].ID)
	assert.Equal(t, domain.PrecipNone, got[1].PrecipType, "out-of-domain stored codes read back as None")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LatestInvalidLimit(t *testing.T) {
	s, _ := newMockStore(t, "postgres")
	_, err := s.Latest(context.Background(), 0)
	require.Error(t, err)
}

func TestStore_LatestOneEmpty(t *testing.T) {
	s, mock := newMockStore(t, "postgres")
	mock.ExpectQuery(dialects["postgres"].latestQuery()).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(append([]string{"id"}, columns...)))

	_, err := s.LatestOne(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
