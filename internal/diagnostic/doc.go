// Package diagnostic provides the error taxonomy of the transformation engine
// and structured, collected diagnostics for configuration checks.
//
// Key capabilities:
//   - Two error kinds: FUNCTIONAL (caller or configuration input is invalid)
//     and TECHNICAL (environment or system failure)
//   - Stable machine-readable codes from a fixed registry
//   - The offending field path and the pipeline step on every error
//   - Non-fatal diagnostic collection for whole-catalog checks
package diagnostic
