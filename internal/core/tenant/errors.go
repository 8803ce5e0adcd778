package tenant

import "errors"

var (
	// ErrCompanyNotFound is returned when the company does not exist in the meta-database.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrCompanyNotActive is returned when the company exists but is suspended or deleted.
	ErrCompanyNotActive = errors.New("company is not active")

	// ErrMaxPoolLimit is returned when the pool manager reached its pool limit.
	ErrMaxPoolLimit = errors.New("max tenant pool limit reached")
)
