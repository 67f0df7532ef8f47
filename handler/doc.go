// Package handler provides the Handler contract and its built-in
// implementations for dispatching log records to outputs.
//
// Every output stage implements emit/flush/close. Emit never raises
// into application code: I/O failures are reported on a side-channel
// writer (stderr by default) and otherwise swallowed.
//
// Built-in handlers:
//
//   - ConsoleHandler writes JSON or colored text to any io.Writer.
//   - FileHandler appends records to a file behind one mutex, creating
//     parent directories as needed.
//   - RotatingFileHandler adds size-based rotation with a bounded
//     path.1..path.N backup chain.
//   - AsyncHandler wraps any of the above behind a bounded queue and a
//     single consumer goroutine, with Drop, Block, or Fallback overflow
//     behavior and size/time-bounded batching.
//   - SlogHandler adapts the pipeline to log/slog.Handler, allowing it
//     to serve as a drop-in backend for the standard library.
//
// AsyncHandler tracks dropped and processed counts, queryable at
// runtime and reported on close.
package handler
