package collection

import "errors"

// The issuance error taxonomy. Services wrap these with context; callers
// branch with errors.Is.
var (
	// ErrWrongPaymentAmount fails a mint whose supplied value does not
	// exactly equal count * pricePerMint.
	ErrWrongPaymentAmount = errors.New("wrong payment amount")

	// ErrSupplyExceeded fails a reservation that would push the minted
	// counter past the fixed cap.
	ErrSupplyExceeded = errors.New("supply exceeded")

	// ErrUnauthorized fails a privileged operation invoked by anyone other
	// than the collection's authorized principal.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransferFailed fails a withdrawal whose outbound transfer was
	// rejected or whose balance cannot cover the amount.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrRegistryFailure fails a mint whose registry attachment was rejected.
	ErrRegistryFailure = errors.New("asset registry failure")

	// ErrMintInProgress rejects an operation that re-enters a collection
	// while another privileged operation is in flight.
	ErrMintInProgress = errors.New("operation already in progress")

	// ErrNotFound reports an unknown collection or token.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCount rejects a zero-count request.
	ErrInvalidCount = errors.New("count must be positive")
)
