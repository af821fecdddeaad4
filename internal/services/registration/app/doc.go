// Package server composes and runs the registration process boundary.
//
// It hosts the gRPC API and the HTTP endpoint over one SQLite store that
// holds both accounts and the documents written after sign-up.
package server
