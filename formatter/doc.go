// Package formatter serializes finished log records into bytes.
//
// JSONFormatter produces the single-line JSON wire shape consumed by
// file and console sinks; TextFormatter produces a human-readable line
// for terminals. Both build their output manually into pooled buffers
// instead of going through encoding/json for the record skeleton, which
// keeps the write path allocation-free; only arbitrary context values
// (nested maps, slices) fall back to the standard encoder.
package formatter
