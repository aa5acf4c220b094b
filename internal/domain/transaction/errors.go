package transaction

import "github.com/salesdash/backend/internal/domain/shared"

var (
	// ErrSeedUnavailable is returned when the dataset source cannot be reached
	ErrSeedUnavailable = shared.NewDomainError("SEED_UNAVAILABLE", "Transaction dataset source is unavailable")
	// ErrSeedFormat is returned when the dataset payload cannot be decoded
	ErrSeedFormat = shared.NewDomainError("SEED_FORMAT", "Transaction dataset is malformed")
)

// ErrImportInProgress is returned when a dataset import is already running
var ErrImportInProgress = shared.NewDomainError("IMPORT_IN_PROGRESS", "A dataset import is already running")
