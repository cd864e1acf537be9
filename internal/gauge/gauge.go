// v0
// internal/gauge/gauge.go
package gauge

import "math"

// Status is the alarm classification of a normalized reading.
type Status int

const (
	Normal Status = iota
	Critical
)

func (s Status) String() string {
	if s == Critical {
		return "Critical"
	}
	return "Normal"
}

const (
	lowThreshold  = 0.2
	highThreshold = 0.8
)

// Normalize maps value onto [0,1] relative to [min,max], clamping at
// both ends. A degenerate range (max <= min) yields 1 when value has
// reached max and 0 otherwise. NaN maps to 0.
func Normalize(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	if max <= min {
		if value >= max {
			return 1
		}
		return 0
	}
	ratio := (value - min) / (max - min)
	return math.Max(0, math.Min(1, ratio))
}

// Classify reports Critical outside the (0.2, 0.8) band.
func Classify(ratio float64) Status {
	if ratio > highThreshold || ratio < lowThreshold {
		return Critical
	}
	return Normal
}

// Tile describes one dashboard gauge.
type Tile struct {
	Title string
	Unit  string
	Min   float64
	Max   float64
}

// Reading is a value placed on a tile's scale.
type Reading struct {
	Value  float64
	Ratio  float64
	Status Status
}

func (t Tile) Read(value float64) Reading {
	ratio := Normalize(value, t.Min, t.Max)
	return Reading{Value: value, Ratio: ratio, Status: Classify(ratio)}
}

var (
	PhaseRVoltage = Tile{Title: "Phase R Voltage", Unit: "V", Min: 180, Max: 260}
	PhaseSVoltage = Tile{Title: "Phase S Voltage", Unit: "V", Min: 180, Max: 260}
	PhaseTVoltage = Tile{Title: "Phase T Voltage", Unit: "V", Min: 180, Max: 260}

	Temperature1 = Tile{Title: "Temperature (Sensor 1)", Unit: "°C", Min: 0, Max: 50}
	Humidity1    = Tile{Title: "Humidity (Sensor 1)", Unit: "%", Min: 0, Max: 100}
	Temperature2 = Tile{Title: "Temperature (Sensor 2)", Unit: "°C", Min: 0, Max: 50}
	Humidity2    = Tile{Title: "Humidity (Sensor 2)", Unit: "%", Min: 0, Max: 100}

	FireDetection  = Tile{Title: "Fire Detection", Unit: "%", Min: 0, Max: 100}
	SmokeDetection = Tile{Title: "Smoke Detection", Unit: "%", Min: 0, Max: 100}
)
