// Package orchestrator wires the loader, builder and validator into a single
// session object. Loaded schemas are published atomically, so readers never
// observe a half-built tree and a reload replaces a schema without locking
// callers that are normalizing against the previous version.
package orchestrator
