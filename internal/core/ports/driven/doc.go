// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). Services depend on these abstractions;
// adapters under internal/adapters/driven implement them.
package driven
