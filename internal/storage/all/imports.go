// Package all wires all built-in output destinations into the storage
// factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which
// in turn register their factories with the storage package.
//
// In other words, importing this package makes the following output kinds
// available at runtime:
//
//   - "csv"      (transform/internal/storage/csvfile)
//   - "sqlite"   (transform/internal/storage/sqlite)
//   - "postgres" (transform/internal/storage/postgres)
//
// A binary that supports only a subset of backends can define an alternative
// wiring package that imports just what it needs instead of this one.
package all

import (
	_ "transform/internal/storage/csvfile"
	_ "transform/internal/storage/postgres"
	_ "transform/internal/storage/sqlite"
)
