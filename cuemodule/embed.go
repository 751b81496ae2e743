// Package cuemodule provides the embedded CUE schema for nsid project
// files. Project files written in CUE are unified with #Project before
// they are decoded.
package cuemodule

import _ "embed"

//go:embed schema/schema.cue
var SchemaCUE string
