// Package repo contains implementations of the repository interfaces in
// src/core/ports.
//
//   - PostgresRepository stores jokes with pgx. Rows are read back through
//     dto.From, so every stored record is checked like inbound input.
//   - MemoryRepository keeps jokes in process memory, for the memory storage
//     driver, dry runs and tests.
//
// Both report missing rows as domain.ErrNotFound and duplicate IDs as
// domain.ErrConflict.
package repo
