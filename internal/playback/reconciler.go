package playback

import (
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
)

const (
	// OrdinaryCap is the highest value written without a natural end of the video
	OrdinaryCap = 99
	// PersistDelta is the change that counts as significant for time-based writes
	PersistDelta = 1
	// PersistInterval is the minimum spacing of time-based writes and of retries after a failure
	PersistInterval = 5 * time.Second
)

// Milestones are progress values whose crossing is always written
var Milestones = []int{25, 50, 75, models.CompletionThreshold, 99, 100}

// PersistState is everything ShouldPersist looks at
type PersistState struct {
	// Max is the highest progress observed in the session
	Max int
	// LastPersisted is the last value the store confirmed
	LastPersisted int
	// Pending is the highest value of writes still in flight, 0 when none
	Pending int
	// LastPersistAt is when the last write was dispatched
	LastPersistAt time.Time
	// LastFailed is set when the most recent write failed
	LastFailed bool
	// Failed is the highest value of the failed writes since the last confirmed one
	Failed int
	Now    time.Time
}

// ShouldPersist decides whether an ordinary write of the capped maximum is due.
//
// A write is due when the value to write is above everything written or in flight and
// either this is the first non-zero value, a milestone was crossed, or the value moved by
// more than PersistDelta with PersistInterval elapsed since the last write. Within
// PersistInterval of a failed write only a milestone the failed write did not reach is due.
func ShouldPersist(s PersistState) bool {
	candidate := capOrdinary(s.Max)
	baseline := max(s.LastPersisted, s.Pending)
	if candidate <= baseline {
		return false
	}

	elapsed := s.Now.Sub(s.LastPersistAt)
	if s.LastFailed && elapsed < PersistInterval {
		return crossesMilestone(max(baseline, s.Failed), candidate)
	}

	if baseline == 0 || crossesMilestone(baseline, candidate) {
		return true
	}

	return candidate-baseline > PersistDelta && elapsed >= PersistInterval
}

func crossesMilestone(from, to int) bool {
	for _, m := range Milestones {
		if from < m && to >= m {
			return true
		}
	}
	return false
}

func capOrdinary(percent int) int {
	return min(percent, OrdinaryCap)
}

// Session holds the progress state of one lesson playback
type Session struct {
	maxSeen       int
	lastPersisted int
	lastPersistAt time.Time
	lastFailed    bool
	failed        int
	pending       int
	inFlight      int
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Seed starts the session from the server and local cache values, keeping the larger.
// The server value counts as already persisted.
func (s *Session) Seed(server, local int) {
	server = models.ClampProgress(server)
	local = models.ClampProgress(local)

	s.maxSeen = max(s.maxSeen, server, local)
	s.lastPersisted = max(s.lastPersisted, server)
}

// Observe raises the session maximum to sample. Lower samples are ignored.
func (s *Session) Observe(sample int) {
	s.maxSeen = max(s.maxSeen, models.ClampProgress(sample))
}

// MaxProgressSeen returns the highest progress observed
func (s *Session) MaxProgressSeen() int {
	return s.maxSeen
}

// LastPersisted returns the last value the store confirmed
func (s *Session) LastPersisted() int {
	return s.lastPersisted
}

// State returns the inputs of ShouldPersist at now
func (s *Session) State(now time.Time) PersistState {
	return PersistState{
		Max:           s.maxSeen,
		LastPersisted: s.lastPersisted,
		Pending:       s.pending,
		LastPersistAt: s.lastPersistAt,
		LastFailed:    s.lastFailed,
		Failed:        s.failed,
		Now:           now,
	}
}

// ShouldPersist applies the write policy to the current state
func (s *Session) ShouldPersist(now time.Time) bool {
	return ShouldPersist(s.State(now))
}

// Dirty reports whether the value PersistValue(force100) would write is not yet stored or in flight
func (s *Session) Dirty(force100 bool) bool {
	return s.PersistValue(force100) > max(s.lastPersisted, s.pending)
}

// PersistValue returns the value to write: the maximum capped at 99, or 100 when force100 is set
func (s *Session) PersistValue(force100 bool) int {
	if force100 {
		return models.MaxProgress
	}
	return capOrdinary(s.maxSeen)
}

// BeginPersist records a write of value dispatched at now
func (s *Session) BeginPersist(value int, now time.Time) {
	s.inFlight++
	s.pending = max(s.pending, value)
	s.lastPersistAt = now
}

// CompletePersist records a confirmed write. stored is the value the store holds
// afterwards and may be above the written one when another device got further.
func (s *Session) CompletePersist(stored int) {
	s.finishWrite()
	s.lastFailed = false
	s.failed = 0
	s.lastPersisted = max(s.lastPersisted, stored)
	s.Observe(stored)
}

// FailPersist records a failed write. The value stays dirty and is retried by a later trigger.
func (s *Session) FailPersist() {
	s.failed = max(s.failed, s.pending)
	s.finishWrite()
	s.lastFailed = true
}

func (s *Session) finishWrite() {
	if s.inFlight > 0 {
		s.inFlight--
	}
	if s.inFlight == 0 {
		s.pending = 0
	}
}
