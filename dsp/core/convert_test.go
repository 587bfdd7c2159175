package core

import (
	"math"
	"testing"
)

func TestDBToLinearRoundTrip(t *testing.T) {
	for _, db := range []float64{-60, -20, -6, 0, 6, 12} {
		lin := DBToLinear(db)
		back := LinearToDB(lin)
		if !NearlyEqual(back, db, 1e-9) {
			t.Errorf("round trip %v dB -> %v -> %v dB", db, lin, back)
		}
	}
}

func TestLinearToDBEdgeCases(t *testing.T) {
	if got := LinearToDB(0); !math.IsInf(got, -1) {
		t.Errorf("LinearToDB(0) = %v, want -Inf", got)
	}
	if got := LinearToDB(-1); !math.IsNaN(got) {
		t.Errorf("LinearToDB(-1) = %v, want NaN", got)
	}
}

func TestGainToDecibelsFloor(t *testing.T) {
	tests := []struct {
		name    string
		gain    float64
		floorDB float64
		want    float64
	}{
		{"unity", 1.0, -60, 0},
		{"half", 0.5, -60, 20 * math.Log10(0.5)},
		{"zero hits floor", 0, -60, -60},
		{"below floor", 1e-6, -60, -60},
		{"exactly at floor", 0.001, -60, -60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GainToDecibels(tt.gain, tt.floorDB)
			if !NearlyEqual(got, tt.want, 1e-9) {
				t.Errorf("GainToDecibels(%v, %v) = %v, want %v", tt.gain, tt.floorDB, got, tt.want)
			}
		})
	}
}

func TestDecibelsToGainFloor(t *testing.T) {
	if got := DecibelsToGain(-60, -60); got != 0 {
		t.Errorf("DecibelsToGain(-60, -60) = %v, want 0", got)
	}
	if got := DecibelsToGain(-80, -60); got != 0 {
		t.Errorf("DecibelsToGain(-80, -60) = %v, want 0", got)
	}
	if got := DecibelsToGain(0, -60); !NearlyEqual(got, 1.0, 1e-12) {
		t.Errorf("DecibelsToGain(0, -60) = %v, want 1", got)
	}
}
