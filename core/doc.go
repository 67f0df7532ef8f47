// Package core defines the shared types used across the agoralog
// pipeline.
//
// It provides the Level type for severity filtering, the Record type
// that represents a single log event in the shape handlers and
// serializers consume, and the Field type for structured key-value
// pairs.
//
// Record objects are pooled via sync.Pool to keep the synchronous hot
// path allocation-free. Callers get a Record with GetRecord and return
// it with PutRecord once every handler has consumed it; records queued
// by an asynchronous handler are never recycled because the consumer
// goroutine may still hold them.
//
// Field encodes values into fixed-size numeric fields (Int64, Float64)
// wherever possible so that common types like int, bool, and time.Time
// never escape to the heap. The Any field exists as a fallback for
// nested maps, lists, and arbitrary types but will cause an allocation.
package core
