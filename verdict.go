// Package verdict holds shared metadata for the verdict tool.
package verdict

// Version is the current verdict release.
const Version = "0.2.0"
