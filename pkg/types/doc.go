// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the papertool
// harvesting pipeline: the canonical Citation value and the configuration
// structs handed to each stage.
package types
