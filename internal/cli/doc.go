// Package cli defines the Cobra command tree for the pagesmith CLI. Each file
// in this package registers one top-level command (scaffold, normalize,
// portfolio, etc.) with the root command. Command implementations delegate to
// internal packages for the page and registry work and only handle flag
// parsing, output formatting, and exit status.
package cli
