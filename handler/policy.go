package handler

import (
	"strings"
	"sync/atomic"
)

// OverflowPolicy defines producer behavior when the async queue is full
type OverflowPolicy int

const (
	// Drop discards the record and counts it; the caller never blocks (default)
	Drop OverflowPolicy = iota
	// Block stalls the caller until queue space frees; zero loss at the
	// cost of backpressure
	Block
	// Fallback counts the record and writes it synchronously through
	// the underlying handler on the calling goroutine
	Fallback
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case Drop:
		return "drop"
	case Block:
		return "block"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy converts a policy name to an OverflowPolicy.
// Unknown names map to Drop.
func ParseOverflowPolicy(s string) OverflowPolicy {
	switch strings.ToLower(s) {
	case "block":
		return Block
	case "fallback":
		return Fallback
	default:
		return Drop
	}
}

// Stats tracks async handler counters shared between producer
// goroutines and the consumer.
type Stats struct {
	dropped   atomic.Uint64
	processed atomic.Uint64
}

// IncrementDropped atomically increments the dropped counter
func (s *Stats) IncrementDropped() {
	s.dropped.Add(1)
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	s.processed.Add(1)
}

// Dropped returns the number of records dropped due to queue overflow
func (s *Stats) Dropped() uint64 {
	return s.dropped.Load()
}

// Processed returns the number of records delivered downstream
func (s *Stats) Processed() uint64 {
	return s.processed.Load()
}
