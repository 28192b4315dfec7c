// Package services defines shared utilities consumed by the download
// orchestrator and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and source URLs for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper, and FailureKind which
//     turns any failure into the category name reported in run results.
//
// Integrations with external executables live in subpackages (ytdlp).
package services
