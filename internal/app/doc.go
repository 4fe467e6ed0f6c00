// Package app wires albumsvc together and runs it.
//
// NewApplication builds every component from a *config.Config in this order:
//
//	1. Logger (global, unless one is injected)
//	2. OpenTelemetry providers and business metrics
//	3. Database, migrations and the instrumented album store
//	4. WebSocket handler, health service and HTTP handlers
//	5. Route table and HTTP server
//
// Run serves until SIGINT, SIGTERM or context cancellation. Shutdown drains
// HTTP requests first, then closes open WebSocket sessions with a going-away
// frame, flushes telemetry and closes the database.
package app
