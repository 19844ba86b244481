package usecase

import (
	"errors"
	"fmt"
)

// ErrNoSummaryRows marks a summary fetch that succeeded but returned nothing.
// The dashboard cannot render without the mandatory table, so this is fatal.
var ErrNoSummaryRows = errors.New("region summary table returned no rows")

// FetchError wraps an upstream table fetch failure. Fatal failures abort the
// pipeline (the summary table); non-fatal ones degrade to an absent dataset.
type FetchError struct {
	Table string
	Fatal bool
	Err   error
}

func (e *FetchError) Error() string {
	kind := "degraded"
	if e.Fatal {
		kind = "fatal"
	}
	return fmt.Sprintf("%s fetch failure for table %s: %v", kind, e.Table, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFatalFetch reports whether err is a fatal upstream fetch failure.
func IsFatalFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Fatal
}

func fatalFetch(table string, err error) *FetchError {
	return &FetchError{Table: table, Fatal: true, Err: err}
}
