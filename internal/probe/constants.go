package probe

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Defaults applied to a zero Config.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTopN    = 10
	DefaultTimeout = 30 * time.Second
)

// Tolerance for comparing scores that went through JSON.
const scoreEpsilon = 1e-9

// maxViolations bounds the violations kept in Stats.
const maxViolations = 50
