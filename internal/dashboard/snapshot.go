// v0
// internal/dashboard/snapshot.go
package dashboard

import (
	"time"

	"nrgchamp/noc-dashboard/internal/telemetry"
)

// ChannelState is the outcome of one channel in the latest poll. Value
// is nil whenever Live is false.
type ChannelState[T any] struct {
	Value *T
	Live  bool
	Err   error
}

func settle[T any](v *T, err error) ChannelState[T] {
	if err != nil || v == nil {
		return ChannelState[T]{Err: err}
	}
	return ChannelState[T]{Value: v, Live: true}
}

// Snapshot is the merged view published after every poll. Snapshots are
// immutable once published.
type Snapshot struct {
	Sensor1    ChannelState[telemetry.ClimateSample]
	Sensor2    ChannelState[telemetry.ClimateSample]
	Hazard     ChannelState[telemetry.HazardSample]
	Electrical ChannelState[telemetry.ElectricalSample]

	// LastUpdate is the completion time of the last poll in which at
	// least one channel succeeded.
	LastUpdate time.Time
	// Err is set only when every channel failed in the latest poll.
	Err error
	// Polls counts completed polls.
	Polls int
}

// LiveCount returns how many channels are live.
func (s Snapshot) LiveCount() int {
	n := 0
	for _, live := range []bool{s.Sensor1.Live, s.Sensor2.Live, s.Hazard.Live, s.Electrical.Live} {
		if live {
			n++
		}
	}
	return n
}
