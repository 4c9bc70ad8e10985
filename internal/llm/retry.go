package llm

import "time"

// RetryConfig holds the retry policy for transient upstream failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// DefaultRetryConfig returns three attempts with a flat 3 second wait.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       3 * time.Second,
	}
}

func (r RetryConfig) retries() uint64 {
	if r.MaxAttempts <= 1 {
		return 0
	}
	return uint64(r.MaxAttempts - 1)
}
