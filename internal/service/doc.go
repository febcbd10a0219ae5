// Package service implements the business logic of neuromesh.
//
// MeshService coordinates the mesh source client, the segmentation-graph
// client, and the cache manifest repository. It owns the workflows the
// HTTP API and CLI expose: cache-aware fetch, bulk download, gap
// healing, mask application, derived geometry, scene assembly, and
// cache reconciliation.
//
// All operations publish events on the EventBus for streaming to
// connected clients over Server-Sent Events.
package service
