// v0
// internal/telemetry/models.go
package telemetry

import (
	"errors"
	"time"
)

// ErrNotFound reports that a channel has no stored or derivable sample.
var ErrNotFound = errors.New("telemetry: no data found")

// Channel names one logical telemetry stream.
type Channel string

const (
	ChannelClimate    Channel = "sensor-data"
	ChannelHazard     Channel = "fire-smoke"
	ChannelElectrical Channel = "electricity"
)

// Channels lists every exportable channel in display order.
func Channels() []Channel {
	return []Channel{ChannelClimate, ChannelHazard, ChannelElectrical}
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelClimate, ChannelHazard, ChannelElectrical:
		return true
	}
	return false
}

// ClimateSample is one temperature/humidity reading. JSON names follow
// the columns of the sensor_data table (suhu = temperature, kelembapan =
// humidity) so existing dashboard clients keep working. Readings are
// pointers because the columns are nullable; a NULL is sent as null.
type ClimateSample struct {
	Temperature *float64  `json:"suhu"`
	Humidity    *float64  `json:"kelembapan"`
	Timestamp   time.Time `json:"timestamp"`
	// Synthetic is set when the sample was derived rather than read.
	Synthetic bool `json:"synthetic"`
}

// HazardSample carries the fire (api) and smoke (asap) indices.
type HazardSample struct {
	FireIndex  *float64  `json:"api_value"`
	SmokeIndex *float64  `json:"asap_value"`
	Timestamp  time.Time `json:"timestamp"`
	Synthetic  bool      `json:"synthetic"`
}

// PhaseSet holds one metric for the R, S and T phases. A nil phase
// was NULL in the store.
type PhaseSet struct {
	R *float64
	S *float64
	T *float64
}

// ElectricalSample is one row of the listrik_noc table: per-phase
// readings plus three-phase aggregates.
type ElectricalSample struct {
	VoltageR       *float64  `json:"phase_r"`
	VoltageS       *float64  `json:"phase_s"`
	VoltageT       *float64  `json:"phase_t"`
	CurrentR       *float64  `json:"current_r"`
	CurrentS       *float64  `json:"current_s"`
	CurrentT       *float64  `json:"current_t"`
	PowerR         *float64  `json:"power_r"`
	PowerS         *float64  `json:"power_s"`
	PowerT         *float64  `json:"power_t"`
	EnergyR        *float64  `json:"energy_r"`
	EnergyS        *float64  `json:"energy_s"`
	EnergyT        *float64  `json:"energy_t"`
	FrequencyR     *float64  `json:"frequency_r"`
	FrequencyS     *float64  `json:"frequency_s"`
	FrequencyT     *float64  `json:"frequency_t"`
	PowerFactorR   *float64  `json:"pf_r"`
	PowerFactorS   *float64  `json:"pf_s"`
	PowerFactorT   *float64  `json:"pf_t"`
	ApparentR      *float64  `json:"va_r"`
	ApparentS      *float64  `json:"va_s"`
	ApparentT      *float64  `json:"va_t"`
	ReactiveR      *float64  `json:"var_r"`
	ReactiveS      *float64  `json:"var_s"`
	ReactiveT      *float64  `json:"var_t"`
	Voltage3ph     *float64  `json:"voltage_3ph"`
	Current3ph     *float64  `json:"current_3ph"`
	Power3ph       *float64  `json:"power_3ph"`
	Energy3ph      *float64  `json:"energy_3ph"`
	Frequency3ph   *float64  `json:"frequency_3ph"`
	PowerFactor3ph *float64  `json:"pf_3ph"`
	Apparent3ph    *float64  `json:"va_3ph"`
	Reactive3ph    *float64  `json:"var_3ph"`
	Timestamp      time.Time `json:"timestamp"`
	Synthetic      bool      `json:"synthetic"`
}

// Voltages returns the per-phase voltages.
func (e ElectricalSample) Voltages() PhaseSet {
	return PhaseSet{R: e.VoltageR, S: e.VoltageS, T: e.VoltageT}
}

// Num returns a pointer to v for building samples.
func Num(v float64) *float64 {
	return &v
}

// Value returns the reading held by p and whether it was present.
func Value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Record is one raw stored row keyed by column name.
type Record map[string]any
