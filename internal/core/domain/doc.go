// Package domain defines the core entities of the voter-file pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - RawRecord: One row from a voter file, keyed by source column name
//   - CanonicalRecord: A renamed row grouped into typed field sets
//   - PersonName, Address, PhoneNumber, VoterRegistration: Sub-entities
//   - District, DistrictSet: Jurisdiction memberships
//   - VendorName, VendorTags: Vendor annotations
//   - Election, VoteMethod, Vote: Vote history
//   - VEPMatch: Cross-file matching keys
//   - Record: The aggregate produced by cleanup and consumed by the merger
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, internal/core/keygen
//   - Cannot Import: Any other internal/ package, any adapter dependency
package domain
