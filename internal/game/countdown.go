package game

// TimerConfig holds countdown thresholds in whole seconds.
type TimerConfig struct {
	Limit      int
	WarnAt     int
	CriticalAt int
}

// DefaultTimerConfig returns a 20 second limit that warns at 5 and turns critical at 3.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{Limit: 20, WarnAt: 5, CriticalAt: 3}
}

// TickResult describes what a tick did.
type TickResult struct {
	Applied bool
	Warn    bool
	Expired bool
}

// Countdown is a per-question second counter. It is bound to the sequence
// number of the question it was started for and ignores ticks for any other.
type Countdown struct {
	cfg       TimerConfig
	seq       int
	remaining int
	warned    bool
	running   bool
}

// NewCountdown returns a stopped countdown.
func NewCountdown(cfg TimerConfig) Countdown {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultTimerConfig().Limit
	}
	return Countdown{cfg: cfg, remaining: cfg.Limit}
}

// Start rearms the countdown for question seq.
func (c *Countdown) Start(seq int) {
	c.seq = seq
	c.remaining = c.cfg.Limit
	c.warned = false
	c.running = true
}

// Stop cancels the countdown; later ticks are ignored.
func (c *Countdown) Stop() {
	c.running = false
}

// Tick advances one second if seq matches the running question.
func (c *Countdown) Tick(seq int) TickResult {
	if !c.running || seq != c.seq {
		return TickResult{}
	}
	res := TickResult{Applied: true}
	c.remaining--
	if !c.warned && c.remaining > 0 && c.remaining <= c.cfg.WarnAt {
		c.warned = true
		res.Warn = true
	}
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
		res.Expired = true
	}
	return res
}

// Remaining returns the seconds left.
func (c Countdown) Remaining() int {
	return c.remaining
}

// Limit returns the configured seconds per question.
func (c Countdown) Limit() int {
	return c.cfg.Limit
}

// Critical reports whether the countdown is in its final seconds.
func (c Countdown) Critical() bool {
	return c.running && c.remaining <= c.cfg.CriticalAt
}

// Running reports whether ticks are being accepted.
func (c Countdown) Running() bool {
	return c.running
}

// Seq returns the question sequence number the countdown is bound to.
func (c Countdown) Seq() int {
	return c.seq
}
