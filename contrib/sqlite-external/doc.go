// Package sqliteexternal registers the optional CGO SQLite driver.
//
// It is only compiled into the binary when building with the cgo_sqlite tag:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/toolkit
//
// Without the tag, core/sqlite uses the pure Go modernc.org/sqlite driver and
// the history export works the same way.
package sqliteexternal
