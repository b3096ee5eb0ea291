package monitor

// Latch is the one-shot alert guard for a run. It only moves one way,
// not-yet-alerted to alerted, and is owned by the run rather than living in
// package state, so every new process starts unlatched.
type Latch struct {
	fired bool
}

func (l *Latch) Fired() bool { return l.fired }

// Fire latches. Callers fire only after a successful send, so a failed
// delivery leaves the run free to alert on a later breach.
func (l *Latch) Fire() { l.fired = true }
