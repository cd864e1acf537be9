// v0
// internal/telemetry/defaults.go
package telemetry

import "time"

// Offsets applied to the primary climate sample when the secondary
// sensor has not reported.
const (
	secondaryTempOffset     = 1.2
	secondaryHumidityOffset = 3.5
)

// DeriveSecondary synthesizes the secondary climate sample from the
// primary one. The timestamp is carried over unchanged and a NULL
// primary reading stays NULL.
func DeriveSecondary(primary ClimateSample) ClimateSample {
	return ClimateSample{
		Temperature: offset(primary.Temperature, secondaryTempOffset),
		Humidity:    offset(primary.Humidity, secondaryHumidityOffset),
		Timestamp:   primary.Timestamp,
		Synthetic:   true,
	}
}

func offset(v *float64, by float64) *float64 {
	if v == nil {
		return nil
	}
	return Num(*v + by)
}

// DefaultHazard is served when api_asap_data is empty.
func DefaultHazard(now time.Time) HazardSample {
	return HazardSample{
		FireIndex:  Num(15),
		SmokeIndex: Num(25),
		Timestamp:  now,
		Synthetic:  true,
	}
}

// DefaultElectrical is served when listrik_noc is empty. Per-phase
// power is roughly voltage times current and the aggregates sum the
// phases, so the record is internally consistent.
func DefaultElectrical(now time.Time) ElectricalSample {
	return ElectricalSample{
		VoltageR: Num(220), VoltageS: Num(222), VoltageT: Num(221),
		CurrentR: Num(15), CurrentS: Num(16), CurrentT: Num(14),
		PowerR: Num(3300), PowerS: Num(3552), PowerT: Num(3094),
		EnergyR: Num(12500), EnergyS: Num(13200), EnergyT: Num(11800),
		FrequencyR: Num(50.1), FrequencyS: Num(50.2), FrequencyT: Num(50.0),
		PowerFactorR: Num(0.92), PowerFactorS: Num(0.93), PowerFactorT: Num(0.91),
		ApparentR: Num(3580), ApparentS: Num(3820), ApparentT: Num(3400),
		ReactiveR: Num(1200), ReactiveS: Num(1240), ReactiveT: Num(1180),
		Voltage3ph:     Num(221),
		Current3ph:     Num(45),
		Power3ph:       Num(9946),
		Energy3ph:      Num(37500),
		Frequency3ph:   Num(50.1),
		PowerFactor3ph: Num(0.92),
		Apparent3ph:    Num(10800),
		Reactive3ph:    Num(3620),
		Timestamp:      now,
		Synthetic:      true,
	}
}
