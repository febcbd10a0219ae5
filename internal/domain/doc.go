// Package domain defines the core domain types for the neuromesh toolkit.
//
// This package contains the fundamental entities that represent neuron
// surface meshes and their derived artifacts.
//
// # Core Types
//
// Mesh is a triangular surface mesh for a single segmentation object:
// vertex coordinates in nanometers, triangular faces, and link edges added
// by gap healing.
//
// Mask is a boolean selection over a mesh's vertices. Masks compose by
// intersection and are applied to produce re-indexed submeshes.
//
// Actor and Scene describe the renderable view of one or more meshes
// (color, opacity, visibility) for export to an external viewer.
//
// MeshRecord is the cache-manifest entry for a mesh on disk, and
// Discrepancy tracks conflicts between the manifest and the cache
// directory found during integrity verification.
//
// # Derived Geometry
//
// Surface area, enclosed volume, and center of mass are computed directly
// from the triangle soup. Volume and center of mass assume a watertight
// mesh; no validation is performed, and results for non-watertight input
// are meaningless.
package domain
