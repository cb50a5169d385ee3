// Package app wires the application together: configuration, logging,
// telemetry, the ledger store, the freshness database, the merger, the inbox
// runner and the HTTP server.
//
// # Initialization Flow
//
//	1. Resolve and create the data directories
//	2. Initialize OpenTelemetry (Prometheus metrics, optional stdout traces)
//	3. Open the freshness database and the ledger store
//	4. Load the holiday calendar
//	5. Build the merger, the inbox runner and the read services
//	6. Build the router and the HTTP server
//
// Close releases everything in reverse order. Commands in cmd/pipeledger use
// only the parts they need; New is cheap enough to call per command.
package app
