// Package domain contains the core domain model for the application.
//
// This package defines:
//   - Entities: Joke, with its filter and patch value objects
//   - Enumerations: Category (self-validating) and Audience (backed by an
//     enum.Definition)
//   - Domain Errors: Business rule violation errors
//
// Rules for this package:
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Value objects are copied, never shared
//
// Entities are never built from raw input here; inbound payloads go through
// the dto engine first.
package domain
