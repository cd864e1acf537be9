// v0
// internal/gauge/gauge_test.go
package gauge

import (
	"math"
	"testing"
)

func TestNormalizeClamps(t *testing.T) {
	if got := Normalize(150, 0, 100); got != 1.0 {
		t.Fatalf("expected 1.0 above max, got %v", got)
	}
	if got := Normalize(-10, 0, 100); got != 0.0 {
		t.Fatalf("expected 0.0 below min, got %v", got)
	}
	if got := Normalize(220, 180, 260); got != 0.5 {
		t.Fatalf("expected 0.5 mid-range, got %v", got)
	}
}

func TestNormalizeDegenerateRange(t *testing.T) {
	if got := Normalize(5, 10, 10); got != 0 {
		t.Fatalf("expected 0 below degenerate max, got %v", got)
	}
	if got := Normalize(10, 10, 10); got != 1 {
		t.Fatalf("expected 1 at degenerate max, got %v", got)
	}
	if got := Normalize(math.NaN(), 0, 100); got != 0 {
		t.Fatalf("expected NaN to map to 0, got %v", got)
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(Normalize(90, 0, 100)); got != Critical {
		t.Fatalf("expected Critical for 90, got %s", got)
	}
	if got := Classify(Normalize(50, 0, 100)); got != Normal {
		t.Fatalf("expected Normal for 50, got %s", got)
	}
	if got := Classify(Normalize(10, 0, 100)); got != Critical {
		t.Fatalf("expected Critical for 10, got %s", got)
	}
	if got := Classify(0.8); got != Normal {
		t.Fatalf("expected boundary 0.8 to be Normal, got %s", got)
	}
}

func TestTileRead(t *testing.T) {
	r := PhaseRVoltage.Read(221)
	if r.Status != Normal || r.Value != 221 {
		t.Fatalf("expected normal nominal voltage, got %#v", r)
	}
	if r := Temperature1.Read(45); r.Status != Critical {
		t.Fatalf("expected 45 °C to be Critical, got %s", r.Status)
	}
}
