package browser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alnah/go-mdsync"
)

// errNoEcho is returned by the probe script when no scroll event followed
// a write within echoWaitMS.
var errNoEcho = errors.New("no scroll event after write")

const echoWaitMS = 1000

// echoJS writes scrollTop and resolves with the milliseconds until the
// scroll event the write caused, or -1 if none arrives.
const echoJS = `(id, top, wait) => new Promise(resolve => {
	const el = document.getElementById(id);
	const t0 = performance.now();
	const timer = setTimeout(() => resolve(-1), wait);
	el.addEventListener("scroll", () => { clearTimeout(timer); resolve(performance.now() - t0); }, {once: true});
	el.scrollTop = top;
})`

// MeasureEchoLatency writes pane's scrollTop samples times and returns,
// for each write, the delay until the browser dispatched its scroll
// event. On error the samples taken so far are returned with it.
func (p *Page) MeasureEchoLatency(ctx context.Context, pane mdsync.Source, samples int) ([]time.Duration, error) {
	g, err := p.Geometry(ctx, pane)
	if err != nil {
		return nil, err
	}
	targets, err := probeTargets(g.ScrollTop, g.MaxScroll(), samples)
	if err != nil {
		return nil, err
	}

	out := make([]time.Duration, 0, len(targets))
	for _, top := range targets {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := p.page.Context(ctx).Eval(echoJS, pane.String(), top, echoWaitMS)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrScript, err)
		}
		ms := res.Value.Num()
		if ms < 0 {
			return out, fmt.Errorf("%w: %s at top %.0f", errNoEcho, pane, top)
		}
		out = append(out, millis(ms))
	}
	return out, nil
}

// probeTargets alternates between two offsets a quarter from each end, so
// every write moves the pane. The first target differs from current.
func probeTargets(current, maxScroll float64, n int) ([]float64, error) {
	if maxScroll < 1 {
		return nil, ErrNotScrollable
	}
	a, b := math.Round(maxScroll/4), math.Round(maxScroll*3/4)
	if a == b {
		a, b = 0, math.Floor(maxScroll)
	}
	if math.Round(current) == a {
		a, b = b, a
	}
	out := make([]float64, max(n, 0))
	for i := range out {
		if i%2 == 0 {
			out[i] = a
		} else {
			out[i] = b
		}
	}
	return out, nil
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
