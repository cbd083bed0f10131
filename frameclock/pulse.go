package frameclock

import "time"

// PulseSource supplies display-refresh pulses to a Clock.
//
// On a device this is an adapter over the platform vsync/choreographer
// callback; off-device the built-in sources below stand in for it.
type PulseSource interface {
	// Pulses returns the pulse channel. The clock treats a close as
	// end of delivery.
	Pulses() <-chan time.Time
}

// TickerPulse is a PulseSource driven by a wall-clock ticker. It is
// the stand-in for hosts without a native refresh signal (simulator,
// headless tests); real deployments adapt the platform vsync instead.
type TickerPulse struct {
	ticker *time.Ticker
}

// NewTickerPulse creates a ticker-backed source firing every interval.
func NewTickerPulse(interval time.Duration) *TickerPulse {
	return &TickerPulse{ticker: time.NewTicker(interval)}
}

// Pulses implements PulseSource.
func (t *TickerPulse) Pulses() <-chan time.Time {
	return t.ticker.C
}

// Stop halts the ticker. The channel is not closed (time.Ticker
// semantics); stop the clock before stopping its source.
func (t *TickerPulse) Stop() {
	t.ticker.Stop()
}

// ManualPulse is a PulseSource driven by explicit Emit calls.
// Deterministic by construction; intended for tests.
type ManualPulse struct {
	ch chan time.Time
}

// NewManualPulse creates a manual source.
func NewManualPulse() *ManualPulse {
	return &ManualPulse{ch: make(chan time.Time)}
}

// Pulses implements PulseSource.
func (m *ManualPulse) Pulses() <-chan time.Time {
	return m.ch
}

// Emit delivers one pulse with the given timestamp. Blocks until the
// clock's delivery loop accepts it, so callers know the pulse was
// consumed (dispatch may still be in flight when Emit returns).
func (m *ManualPulse) Emit(ts time.Time) {
	m.ch <- ts
}

// Close ends the pulse stream; the clock's delivery loop exits when it
// drains the channel.
func (m *ManualPulse) Close() {
	close(m.ch)
}
