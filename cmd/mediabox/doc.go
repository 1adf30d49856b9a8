// Package main hosts the mediabox CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, builds the plugin
// registry and structured logger once, and hands them to subcommands that
// probe inputs, convert subtitle files, list registered plugins, run
// preflight checks and browse the session history database.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
