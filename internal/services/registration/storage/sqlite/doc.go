// Package sqlite implements registration persistence over a single SQLite file.
package sqlite
