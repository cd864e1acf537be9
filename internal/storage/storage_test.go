// v0
// internal/storage/storage_test.go
package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"nrgchamp/noc-dashboard/internal/config"
	"nrgchamp/noc-dashboard/internal/telemetry"
)

type recordingObserver struct {
	queries []string
	errs    int
}

func (r *recordingObserver) ObserveQuery(query string, _ time.Duration, err error) {
	r.queries = append(r.queries, query)
	if err != nil {
		r.errs++
	}
}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock, *recordingObserver) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	obs := &recordingObserver{}
	return New(db, obs), mock, obs
}

func TestLatestClimateScansRow(t *testing.T) {
	store, mock, obs := newMockStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(climateQuery)).
		WithArgs(0).
		WillReturnRows(sqlmock.NewRows([]string{"suhu", "kelembapan", "waktu"}).AddRow(25.0, 60.0, ts))

	got, err := store.LatestClimate(context.Background(), 0)
	if err != nil {
		t.Fatalf("latest climate: %v", err)
	}
	if got == nil || *got.Temperature != 25 || *got.Humidity != 60 || !got.Timestamp.Equal(ts) {
		t.Fatalf("unexpected sample %#v", got)
	}
	if len(obs.queries) != 1 || obs.queries[0] != "climate" {
		t.Fatalf("expected one climate observation, got %v", obs.queries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLatestClimateNoRowsIsNil(t *testing.T) {
	store, mock, obs := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(climateQuery)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"suhu", "kelembapan", "waktu"}))

	got, err := store.LatestClimate(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil sample, got %#v", got)
	}
	if obs.errs != 0 {
		t.Fatalf("expected no observed errors, got %d", obs.errs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLatestHazardWrapsStoreError(t *testing.T) {
	store, mock, obs := newMockStore(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(hazardQuery)).WillReturnError(boom)

	_, err := store.LatestHazard(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if obs.errs != 1 {
		t.Fatalf("expected one observed error, got %d", obs.errs)
	}
}

func electricalColumns() []string {
	return []string{
		"phase_r", "phase_s", "phase_t", "current_r", "current_s", "current_t",
		"power_r", "power_s", "power_t", "energy_r", "energy_s", "energy_t",
		"frequency_r", "frequency_s", "frequency_t", "pf_r", "pf_s", "pf_t",
		"va_r", "va_s", "va_t", "var_r", "var_s", "var_t",
		"voltage_3ph", "current_3ph", "power_3ph", "energy_3ph", "frequency_3ph", "pf_3ph", "va_3ph", "var_3ph",
		"waktu",
	}
}

func TestLatestElectricalScansAllColumns(t *testing.T) {
	store, mock, _ := newMockStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	cols := electricalColumns()
	want := telemetry.DefaultElectrical(ts)
	want.Synthetic = false
	mock.ExpectQuery(regexp.QuoteMeta(electricalQuery)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			want.VoltageR, want.VoltageS, want.VoltageT, want.CurrentR, want.CurrentS, want.CurrentT,
			want.PowerR, want.PowerS, want.PowerT, want.EnergyR, want.EnergyS, want.EnergyT,
			want.FrequencyR, want.FrequencyS, want.FrequencyT, want.PowerFactorR, want.PowerFactorS, want.PowerFactorT,
			want.ApparentR, want.ApparentS, want.ApparentT, want.ReactiveR, want.ReactiveS, want.ReactiveT,
			want.Voltage3ph, want.Current3ph, want.Power3ph, want.Energy3ph, want.Frequency3ph, want.PowerFactor3ph, want.Apparent3ph, want.Reactive3ph,
			ts,
		))

	got, err := store.LatestElectrical(context.Background())
	if err != nil {
		t.Fatalf("latest electrical: %v", err)
	}
	if got == nil || !reflect.DeepEqual(*got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestLatestHazardNullReading(t *testing.T) {
	store, mock, obs := newMockStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(hazardQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"api_value", "asap_value", "waktu"}).AddRow(nil, 31.5, ts))

	got, err := store.LatestHazard(context.Background())
	if err != nil {
		t.Fatalf("expected NULL reading to scan, got %v", err)
	}
	if got == nil || got.FireIndex != nil || got.SmokeIndex == nil || *got.SmokeIndex != 31.5 {
		t.Fatalf("expected null fire index and smoke 31.5, got %#v", got)
	}
	if obs.errs != 0 {
		t.Fatalf("expected no observed errors, got %d", obs.errs)
	}
	body, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"api_value":null`) {
		t.Fatalf("expected api_value null on the wire, got %s", body)
	}
}

func TestLatestElectricalNullAggregate(t *testing.T) {
	store, mock, _ := newMockStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	cols := electricalColumns()
	vals := make([]driver.Value, len(cols))
	for i := range vals[:len(vals)-1] {
		vals[i] = 1.0
	}
	vals[29] = nil // pf_3ph
	vals[len(vals)-1] = ts
	mock.ExpectQuery(regexp.QuoteMeta(electricalQuery)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(vals...))

	got, err := store.LatestElectrical(context.Background())
	if err != nil {
		t.Fatalf("expected NULL aggregate to scan, got %v", err)
	}
	if got.PowerFactor3ph != nil || got.Reactive3ph == nil || *got.Reactive3ph != 1 {
		t.Fatalf("expected only pf_3ph null, got %#v", got)
	}
}

func TestSeriesReturnsRawRowsNewestFirst(t *testing.T) {
	store, mock, _ := newMockStore(t)
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM sensor_data ORDER BY waktu DESC")).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("id").OfType("BIGINT", int64(0)),
			sqlmock.NewColumn("suhu").OfType("DECIMAL", []byte{}),
			sqlmock.NewColumn("kelembapan").OfType("DECIMAL", []byte{}),
			sqlmock.NewColumn("waktu").OfType("DATETIME", time.Time{}),
		).
			AddRow(int64(2), []byte("25.50"), []byte("61.00"), t1).
			AddRow(int64(1), []byte("24.75"), []byte("60.00"), t0))

	rows, err := store.Series(context.Background(), telemetry.ChannelClimate)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["id"] != int64(2) || rows[0]["suhu"] != 25.5 || rows[1]["kelembapan"] != 60.0 {
		t.Fatalf("unexpected rows %#v", rows)
	}
	if ts, ok := rows[1]["waktu"].(time.Time); !ok || !ts.Equal(t0) {
		t.Fatalf("expected waktu %s, got %#v", t0, rows[1]["waktu"])
	}
}

func TestSeriesKeepsTextColumnsAsStored(t *testing.T) {
	store, mock, _ := newMockStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM sensor_data ORDER BY waktu DESC")).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("suhu").OfType("DECIMAL", []byte{}),
			sqlmock.NewColumn("note").OfType("VARCHAR", []byte{}),
			sqlmock.NewColumn("device").OfType("VARCHAR", []byte{}),
			sqlmock.NewColumn("kelembapan").OfType("DOUBLE", float64(0)),
			sqlmock.NewColumn("waktu").OfType("DATETIME", time.Time{}),
		).AddRow([]byte("25.50"), []byte("nan"), []byte("007"), math.Inf(1), ts))

	rows, err := store.Series(context.Background(), telemetry.ChannelClimate)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row["suhu"] != 25.5 {
		t.Fatalf("expected decimal suhu as number, got %#v", row["suhu"])
	}
	if row["note"] != "nan" || row["device"] != "007" {
		t.Fatalf("expected text columns unchanged, got note=%#v device=%#v", row["note"], row["device"])
	}
	if row["kelembapan"] != nil {
		t.Fatalf("expected non-finite float as null, got %#v", row["kelembapan"])
	}
	if _, err := json.Marshal(rows); err != nil {
		t.Fatalf("expected exported rows to encode, got %v", err)
	}
}

func TestSeriesEmptyTable(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM listrik_noc ORDER BY waktu DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "phase_r", "waktu"}))

	rows, err := store.Series(context.Background(), telemetry.ChannelElectrical)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
}

func TestSeriesUnknownChannel(t *testing.T) {
	store, _, _ := newMockStore(t)
	if _, err := store.Series(context.Background(), telemetry.Channel("users")); err == nil {
		t.Fatalf("expected error for unknown channel")
	}
}

func TestLookupCredential(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(userQuery)).
		WithArgs("operator").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash"}).AddRow("operator", "$2a$10$hash"))
	mock.ExpectQuery(regexp.QuoteMeta(userQuery)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	c, err := store.LookupCredential(context.Background(), "operator")
	if err != nil || c == nil || c.Username != "operator" || c.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected credential %#v (err %v)", c, err)
	}
	c, err = store.LookupCredential(context.Background(), "ghost")
	if err != nil || c != nil {
		t.Fatalf("expected nil credential for unknown user, got %#v (err %v)", c, err)
	}
}

func TestDataSource(t *testing.T) {
	driver, dsn, err := dataSource(config.Database{
		Driver: config.DriverMySQL, Host: "10.0.0.5", Port: 3306, User: "noc", Password: "pw", Name: "suhu",
	})
	if err != nil {
		t.Fatalf("dataSource: %v", err)
	}
	if driver != "mysql" {
		t.Fatalf("expected mysql driver, got %s", driver)
	}
	if !regexp.MustCompile(`^noc:pw@tcp\(10\.0\.0\.5:3306\)/suhu\?.*parseTime=true`).MatchString(dsn) {
		t.Fatalf("unexpected dsn %s", dsn)
	}

	driver, dsn, err = dataSource(config.Database{Driver: config.DriverSQLite, Path: "/tmp/noc.db"})
	if err != nil || driver != "sqlite" || dsn != "file:/tmp/noc.db?_pragma=busy_timeout(5000)" {
		t.Fatalf("unexpected sqlite source %s %s (err %v)", driver, dsn, err)
	}

	if _, _, err := dataSource(config.Database{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
