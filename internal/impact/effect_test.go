package impact

import (
	"errors"
	"math"
	"testing"

	apperrors "fipulse/internal/errors"
)

func TestEffectZeroBeforeLag(t *testing.T) {
	forms := []EffectForm{FormImmediate, FormGradual, FormDistributed}
	for _, form := range forms {
		for _, elapsed := range []float64{0, 1, 2.5, 5.99} {
			got, err := Effect(elapsed, 6, 4.0, form)
			if err != nil {
				t.Fatalf("Effect(%v, 6, 4.0, %s) returned error: %v", elapsed, form, err)
			}
			if got != 0 {
				t.Errorf("Effect(%v, 6, 4.0, %s) = %v, want 0 before lag", elapsed, form, got)
			}
		}
	}
}

func TestImmediateEffect(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float64
		lag     int
		want    float64
	}{
		{"at_lag", 3, 3, 5.0},
		{"after_lag", 10, 3, 5.0},
		{"zero_lag", 0, 0, 5.0},
		{"far_future", 120, 3, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Effect(tt.elapsed, tt.lag, 5.0, FormImmediate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Effect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradualEffectRamp(t *testing.T) {
	const magnitude = 8.0
	const lag = 3

	// Half the magnitude six months into the ramp.
	half, err := Effect(float64(lag)+6, lag, magnitude, FormGradual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(half-magnitude*0.5) > 1e-12 {
		t.Errorf("gradual effect at lag+6 = %v, want %v", half, magnitude*0.5)
	}

	// Full magnitude once the 12-month ramp completes, and it stays there.
	for _, elapsed := range []float64{float64(lag) + 12, float64(lag) + 24} {
		full, err := Effect(elapsed, lag, magnitude, FormGradual)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(full-magnitude) > 1e-12 {
			t.Errorf("gradual effect at %v = %v, want %v", elapsed, full, magnitude)
		}
	}
}

func TestDistributedEffectDecay(t *testing.T) {
	const magnitude = 6.0
	const lag = 2

	prev := math.Inf(1)
	for elapsed := float64(lag); elapsed <= float64(lag)+120; elapsed++ {
		got, err := Effect(elapsed, lag, magnitude, FormDistributed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got <= 0 {
			t.Fatalf("distributed effect at %v = %v, must stay positive", elapsed, got)
		}
		if got >= prev {
			t.Fatalf("distributed effect at %v = %v, not strictly decreasing (prev %v)", elapsed, got, prev)
		}
		prev = got
	}

	// Approaches zero without ever reaching it.
	far, err := Effect(1000, lag, magnitude, FormDistributed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if far <= 0 || far > 1e-10 {
		t.Errorf("distributed effect far out = %v, want tiny but positive", far)
	}
}

func TestDistributedEffectNegativeMagnitude(t *testing.T) {
	// A negative magnitude decays toward zero from below, never flipping sign.
	for elapsed := 0.0; elapsed <= 60; elapsed++ {
		got, err := Effect(elapsed, 0, -3.0, FormDistributed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got > 0 {
			t.Fatalf("distributed effect at %v = %v, changed sign", elapsed, got)
		}
	}
}

func TestEffectUnknownForm(t *testing.T) {
	_, err := Effect(5, 0, 1.0, EffectForm("exponential"))
	if !errors.Is(err, apperrors.ErrUnknownEffectForm) {
		t.Errorf("Effect with unknown form: got %v, want ErrUnknownEffectForm", err)
	}
}

func TestParseEffectForm(t *testing.T) {
	tests := []struct {
		tag     string
		want    EffectForm
		wantErr bool
	}{
		{"immediate", FormImmediate, false},
		{"gradual", FormGradual, false},
		{"distributed", FormDistributed, false},
		{"", FormImmediate, false},
		{"step", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEffectForm(tt.tag)
		if tt.wantErr {
			if !errors.Is(err, apperrors.ErrUnknownEffectForm) {
				t.Errorf("ParseEffectForm(%q): got err %v, want ErrUnknownEffectForm", tt.tag, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEffectForm(%q): unexpected error %v", tt.tag, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEffectForm(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestEffectSeries(t *testing.T) {
	series, err := EffectSeries(24, 3, 10.0, FormGradual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 25 {
		t.Fatalf("series length = %d, want 25", len(series))
	}
	if series[0] != 0 || series[2] != 0 {
		t.Errorf("series before lag = %v/%v, want zeros", series[0], series[2])
	}
	if math.Abs(series[15]-10.0) > 1e-12 {
		t.Errorf("series at lag+12 = %v, want full magnitude", series[15])
	}
}
