package calibrate

import (
	"errors"
	"testing"
	"time"
)

const ms = time.Millisecond

func TestSummarize(t *testing.T) {
	t.Parallel()

	in := []time.Duration{9 * ms, 1 * ms, 5 * ms, 3 * ms, 7 * ms}
	s, err := Summarize(in)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}

	want := Summary{Samples: 5, Min: 1 * ms, Median: 5 * ms, P95: 9 * ms, P99: 9 * ms, Max: 9 * ms}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}
	if in[0] != 9*ms {
		t.Error("Summarize() reordered its input")
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	if _, err := Summarize(nil); !errors.Is(err, ErrNoSamples) {
		t.Errorf("error = %v, want ErrNoSamples", err)
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	sorted := make([]time.Duration, 100)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * ms
	}

	tests := []struct {
		p    float64
		want time.Duration
	}{
		{p: 0, want: 1 * ms},
		{p: 1, want: 1 * ms},
		{p: 50, want: 50 * ms},
		{p: 99, want: 99 * ms},
		{p: 100, want: 100 * ms},
		{p: 250, want: 100 * ms},
		{p: -5, want: 1 * ms},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); got != tt.want {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if Percentile(nil, 50) != 0 {
		t.Error("Percentile(nil) should be 0")
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		p99          time.Duration
		wantSuppress time.Duration
		wantIdle     time.Duration
	}{
		{name: "fast host uses floors", p99: 2 * ms, wantSuppress: 20 * ms, wantIdle: 100 * ms},
		{name: "zero latency", p99: 0, wantSuppress: 20 * ms, wantIdle: 100 * ms},
		{name: "typical browser", p99: 22 * ms, wantSuppress: 45 * ms, wantIdle: 135 * ms},
		{name: "already aligned", p99: 25 * ms, wantSuppress: 50 * ms, wantIdle: 150 * ms},
		{name: "slow host", p99: 70 * ms, wantSuppress: 140 * ms, wantIdle: 420 * ms},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Recommend(Summary{P99: tt.p99})
			if got.SuppressDelay != tt.wantSuppress {
				t.Errorf("SuppressDelay = %v, want %v", got.SuppressDelay, tt.wantSuppress)
			}
			if got.IdleWindow != tt.wantIdle {
				t.Errorf("IdleWindow = %v, want %v", got.IdleWindow, tt.wantIdle)
			}
			if got.IdleWindow <= got.SuppressDelay {
				t.Error("idle window must outlast suppression")
			}
		})
	}
}
