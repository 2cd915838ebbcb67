// Package metrics exposes Prometheus collectors for the progress engine
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	// ProgressWrites counts progress writes by result
	ProgressWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lesson_progress_writes_total",
			Help: "Total number of lesson progress writes",
		},
		[]string{"result"},
	)

	// ProgressWritesAbsorbed counts writes whose value was lower than the stored one
	ProgressWritesAbsorbed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lesson_progress_writes_absorbed_total",
			Help: "Total number of progress writes that did not raise the stored value",
		},
	)

	// LessonUnlocks counts access records created for next lessons
	LessonUnlocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lesson_unlocks_total",
			Help: "Total number of next lessons unlocked",
		},
	)

	// UnlockFailClosed counts unlock decisions that fell back to locked because of a store error
	UnlockFailClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lesson_unlock_fail_closed_total",
			Help: "Total number of unlock checks that failed closed",
		},
		[]string{"stage"}, // "next_lookup", "progress_lookup", "access_check", "provision"
	)

	// SequenceCacheHits counts next-lesson lookups served from Redis
	SequenceCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lesson_sequence_cache_hits_total",
			Help: "Total number of next-lesson lookups served from cache",
		},
	)

	// SequenceCacheMisses counts next-lesson lookups that went to the database
	SequenceCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lesson_sequence_cache_misses_total",
			Help: "Total number of next-lesson lookups not found in cache",
		},
	)
)
