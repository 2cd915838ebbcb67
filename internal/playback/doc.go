// Package playback tracks how far a learner has watched a lesson video and keeps
// the progress store in step with it.
//
// A Player owns one Session, one Sampler and at most one Countdown and mutates
// them only from its Run goroutine. Media events and user actions are posted to
// the player; store writes run in the background and report back to it.
//
// Progress only ever goes up. The session never lowers its maximum, and the store
// keeps the larger of the stored and the written value, so writes may complete in
// any order. Ordinary writes are capped at 99; only a natural end of the video
// writes 100.
package playback
