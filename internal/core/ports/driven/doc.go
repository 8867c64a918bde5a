// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - AliasProvider: Loads per-jurisdiction field aliases and settings
//   - RecordSource: Streams raw records from a voter file
//   - SourceFactory: Opens RecordSources by file type
//   - EntityStore: Entity pool with one transaction per record
//   - CleanupStage: One ordered normalisation step
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - KeyLocker: Cross-process identity key locks. Without it, keys are
//     locked in-process only.
//   - MetricsRecorder: Pipeline measurements. Without it, nothing is recorded.
//   - TurnoutScorer: Turnout scoring. Without it, a participation ratio is used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
