// Package driving defines the interfaces the application core exposes
// to its callers (primary/inbound ports). The HTTP adapter talks to
// the core exclusively through these.
package driving
