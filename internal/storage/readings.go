// v0
// internal/storage/readings.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"nrgchamp/noc-dashboard/internal/telemetry"
)

const (
	climateQuery = "SELECT suhu, kelembapan, waktu FROM sensor_data ORDER BY waktu DESC LIMIT 1 OFFSET ?"
	hazardQuery  = "SELECT api_value, asap_value, waktu FROM api_asap_data ORDER BY waktu DESC LIMIT 1"

	electricalQuery = "SELECT phase_r, phase_s, phase_t, current_r, current_s, current_t, " +
		"power_r, power_s, power_t, energy_r, energy_s, energy_t, " +
		"frequency_r, frequency_s, frequency_t, pf_r, pf_s, pf_t, " +
		"va_r, va_s, va_t, var_r, var_s, var_t, " +
		"voltage_3ph, current_3ph, power_3ph, energy_3ph, frequency_3ph, pf_3ph, va_3ph, var_3ph, " +
		"waktu FROM listrik_noc ORDER BY waktu DESC LIMIT 1"
)

// channelTables maps export channels to their backing tables.
var channelTables = map[telemetry.Channel]string{
	telemetry.ChannelClimate:    "sensor_data",
	telemetry.ChannelHazard:     "api_asap_data",
	telemetry.ChannelElectrical: "listrik_noc",
}

// LatestClimate returns the sensor_data row at offset from the newest,
// or nil when there is no such row. Readings scan into pointers so a
// NULL column yields a nil reading rather than a scan error.
func (s *SQLStore) LatestClimate(ctx context.Context, offset int) (out *telemetry.ClimateSample, err error) {
	defer func(start time.Time) { s.observe("climate", start, err) }(time.Now())

	var c telemetry.ClimateSample
	err = s.db.QueryRowContext(ctx, climateQuery, offset).Scan(&c.Temperature, &c.Humidity, &c.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sensor_data offset %d: %w", offset, err)
	}
	return &c, nil
}

// LatestHazard returns the newest api_asap_data row or nil.
func (s *SQLStore) LatestHazard(ctx context.Context) (out *telemetry.HazardSample, err error) {
	defer func(start time.Time) { s.observe("hazard", start, err) }(time.Now())

	var h telemetry.HazardSample
	err = s.db.QueryRowContext(ctx, hazardQuery).Scan(&h.FireIndex, &h.SmokeIndex, &h.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query api_asap_data: %w", err)
	}
	return &h, nil
}

// LatestElectrical returns the newest listrik_noc row or nil.
func (s *SQLStore) LatestElectrical(ctx context.Context) (out *telemetry.ElectricalSample, err error) {
	defer func(start time.Time) { s.observe("electrical", start, err) }(time.Now())

	var e telemetry.ElectricalSample
	err = s.db.QueryRowContext(ctx, electricalQuery).Scan(
		&e.VoltageR, &e.VoltageS, &e.VoltageT,
		&e.CurrentR, &e.CurrentS, &e.CurrentT,
		&e.PowerR, &e.PowerS, &e.PowerT,
		&e.EnergyR, &e.EnergyS, &e.EnergyT,
		&e.FrequencyR, &e.FrequencyS, &e.FrequencyT,
		&e.PowerFactorR, &e.PowerFactorS, &e.PowerFactorT,
		&e.ApparentR, &e.ApparentS, &e.ApparentT,
		&e.ReactiveR, &e.ReactiveS, &e.ReactiveT,
		&e.Voltage3ph, &e.Current3ph, &e.Power3ph, &e.Energy3ph,
		&e.Frequency3ph, &e.PowerFactor3ph, &e.Apparent3ph, &e.Reactive3ph,
		&e.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query listrik_noc: %w", err)
	}
	return &e, nil
}

// Series returns every row of the channel's table ordered by waktu
// descending. Columns are returned as stored.
func (s *SQLStore) Series(ctx context.Context, ch telemetry.Channel) (out []telemetry.Record, err error) {
	table, ok := channelTables[ch]
	if !ok {
		return nil, fmt.Errorf("unknown channel %q", ch)
	}
	defer func(start time.Time) { s.observe("export_"+table, start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+table+" ORDER BY waktu DESC")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", table, err)
	}
	cols := make([]string, len(types))
	numeric := make([]bool, len(types))
	for i, ct := range types {
		cols[i] = ct.Name()
		numeric[i] = isNumericType(ct.DatabaseTypeName())
	}
	out = []telemetry.Record{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		rec := make(telemetry.Record, len(cols))
		for i, col := range cols {
			rec[col] = columnValue(vals[i], numeric[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// columnValue makes a scanned value JSON safe. Driver byte slices become
// numbers only for numeric column types and strings otherwise, so text
// such as "007" or "nan" is exported as stored. Non-finite floats, which
// JSON cannot carry, become null.
func columnValue(v any, numeric bool) any {
	switch x := v.(type) {
	case []byte:
		str := string(x)
		if numeric {
			if f, err := strconv.ParseFloat(str, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return f
			}
		}
		return str
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
	}
	return v
}

// isNumericType reports whether a driver type name (MySQL "DECIMAL",
// "UNSIGNED INT", SQLite "REAL", "DECIMAL(5,2)") holds numbers.
func isNumericType(name string) bool {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "UNSIGNED ")
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	switch strings.TrimSpace(name) {
	case "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL", "DOUBLE PRECISION",
		"INT", "INTEGER", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT":
		return true
	}
	return false
}
