// Package handler implements HTTP request handlers for the neuromesh API.
//
// This package provides the HTTP layer for the REST API, handling
// requests for mesh fetching, bulk downloads, gap healing, mask
// application, geometry stats, scene assembly, and integrity findings.
//
// # Handlers
//
// MeshHandler handles mesh-related operations including fetch, heal,
// mask, stats, eviction, and integrity queries.
//
// SceneHandler manages the viewer scene and its JSON/YAML export.
//
// Middleware provides request logging, panic recovery, and CORS support.
//
// # API Design
//
// All handlers follow REST conventions:
// - GET for retrieval
// - POST for creation and operations
// - DELETE for removal
//
// Errors are returned as JSON with {error, details} structure and
// appropriate HTTP status codes. Request bodies are validated before
// processing.
//
// # Server-Sent Events
//
// The /events endpoint provides real-time progress updates via SSE,
// allowing clients to follow bulk downloads, healing passes, and
// integrity verification as they happen.
package handler
