package evergreen

import "time"

// debugStats holds per-frame draw timings. Only populated when the session
// is in debug mode.
type debugStats struct {
	emitTime     time.Duration
	sortTime     time.Duration
	submitTime   time.Duration
	commandCount int
	additive     int
}

// debugLogEvery is the frame interval between debug records.
const debugLogEvery = 120

// SetDebug toggles draw timing logs.
func (s *Session) SetDebug(on bool) {
	s.debug = on
}

// debugLog writes draw timings at debug level every debugLogEvery frames.
func (s *Session) debugLog(stats debugStats) {
	if !s.debug || s.frame%debugLogEvery != 0 {
		return
	}
	s.logger.Debug("draw stats",
		"frame", s.frame,
		"emit", stats.emitTime,
		"sort", stats.sortTime,
		"submit", stats.submitTime,
		"total", stats.emitTime+stats.sortTime+stats.submitTime,
		"commands", stats.commandCount,
		"additive", stats.additive)
}

// countAdditive counts commands drawn with the lighter blend.
func countAdditive(commands []renderCommand) int {
	n := 0
	for i := range commands {
		if commands[i].additive {
			n++
		}
	}
	return n
}
