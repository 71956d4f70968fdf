// Package dto contains the request and response shapes of the HTTP API.
//
// They are declared for the dto engine in src/core/dto: requests are built
// with dto.From straight from the gin context, so casting, defaults, unknown
// key rejection and validation happen before a handler sees any value.
// Responses are built the same way from domain values and can be projected
// with Only and Except.
//
// Naming convention:
//   - Request types: <Action><Resource>Request (e.g., CreateJokeRequest)
//   - Response types: <Resource>Response (e.g., JokeResponse)
package dto
