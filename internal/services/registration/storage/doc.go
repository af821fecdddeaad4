// Package storage defines persistence contracts for registration accounts and
// the profile and role documents written after sign-up.
package storage
