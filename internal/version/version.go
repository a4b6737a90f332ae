// Package version holds the module version reported by the HTTP health
// endpoint and the CLI.
package version

const Version = "0.1.0"
