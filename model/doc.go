// Package model defines stable boundary types for API layers.
//
// These structs are the JSON shapes served by the HTTP API and printed by the
// CLI. Internal types (mint.Request, resolver.Image) may change shape; these
// should not.
package model
