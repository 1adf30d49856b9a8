// Package preflight provides readiness checks for the filesystem paths and
// plugin names mediabox depends on.
//
// These checks run in two contexts:
//   - The transcode command checks the output directory before a session
//     opens anything, so a doomed run fails before the input is read.
//   - The CLI "mediabox doctor" command runs RunAll and renders every result.
//
// Checks gated by a config toggle are skipped when the feature is disabled.
package preflight
