package checkout

import "time"

const (
	defaultPollInterval    = 2 * time.Second
	defaultPollMaxAttempts = 10
	defaultPollMaxWait     = 30 * time.Second
)

// PollPolicy bounds how a caller re-polls a pending session.
// Multiplier 1 keeps a fixed interval.
type PollPolicy struct {
	Interval    time.Duration
	Multiplier  float64
	MaxInterval time.Duration
	MaxAttempts int
	MaxWait     time.Duration
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:    defaultPollInterval,
		Multiplier:  1,
		MaxInterval: defaultPollInterval,
		MaxAttempts: defaultPollMaxAttempts,
		MaxWait:     defaultPollMaxWait,
	}
}

// Normalize fills zero values with defaults and clamps nonsense.
func (p PollPolicy) Normalize() PollPolicy {
	d := DefaultPollPolicy()
	if p.Interval <= 0 {
		p.Interval = d.Interval
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.MaxInterval < p.Interval {
		p.MaxInterval = p.Interval
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.MaxWait < 0 {
		p.MaxWait = 0
	}
	return p
}

// Delay is the wait after the given attempt (1-based) before the next poll.
// Attempts past MaxAttempts get the delay of the last allowed one.
func (p PollPolicy) Delay(attempt int) time.Duration {
	p = p.Normalize()
	if p.Multiplier == 1 {
		return p.Interval
	}
	attempt = min(attempt, p.MaxAttempts)
	delay := float64(p.Interval)
	for i := 1; i < attempt; i++ {
		delay *= p.Multiplier
		if delay >= float64(p.MaxInterval) {
			return p.MaxInterval
		}
	}
	return time.Duration(delay)
}

// Exhausted reports whether no further poll is allowed after attempt polls
// taking elapsed in total. MaxWait 0 means only the attempt cap applies.
func (p PollPolicy) Exhausted(attempt int, elapsed time.Duration) bool {
	p = p.Normalize()
	if attempt >= p.MaxAttempts {
		return true
	}
	return p.MaxWait > 0 && elapsed+p.Delay(attempt) > p.MaxWait
}

// Budget is the worst-case wall time spent waiting between polls.
func (p PollPolicy) Budget() time.Duration {
	p = p.Normalize()
	var total time.Duration
	for i := 1; i < p.MaxAttempts; i++ {
		total += p.Delay(i)
	}
	if p.MaxWait > 0 && total > p.MaxWait {
		return p.MaxWait
	}
	return total
}

// Waited is the scheduled wait accumulated before the given attempt, for
// callers that only know the attempt number. It stops counting at
// MaxAttempts, where the policy is exhausted anyway.
func (p PollPolicy) Waited(attempt int) time.Duration {
	p = p.Normalize()
	attempt = min(attempt, p.MaxAttempts)
	var total time.Duration
	for i := 1; i < attempt; i++ {
		total += p.Delay(i)
	}
	return total
}

// ClampAttempt bounds a client-reported attempt number to [1, MaxAttempts].
func (p PollPolicy) ClampAttempt(attempt int) int {
	p = p.Normalize()
	return max(1, min(attempt, p.MaxAttempts))
}
