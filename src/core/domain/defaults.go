package domain

// DefaultPageSize is the listing size used when a request does not set one.
const DefaultPageSize = 20

// MaxPageSize caps listing requests.
const MaxPageSize = 100

// MaxBatchSize caps the number of jokes created by one batch request.
const MaxBatchSize = 100

// MaxRating is the highest rating a joke can have.
const MaxRating = 5
