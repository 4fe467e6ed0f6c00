// Package services holds the logic that sits between HTTP handlers and the
// process's dependencies.
//
// HealthService answers the /api/health family of endpoints: liveness is
// unconditional, readiness pings the album database, and version reports the
// build information from pkg/contracts.
package services
