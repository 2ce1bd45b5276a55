package payment

import "fmt"

// TransactionInitError is returned when an initialize call did not produce a
// usable authorization URL. Either Err (transport) or StatusCode/Body
// (provider rejection) is set.
type TransactionInitError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransactionInitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initialize transaction: %v", e.Err)
	}
	return fmt.Sprintf("initialize transaction: provider returned %d: %s", e.StatusCode, e.Body)
}

func (e *TransactionInitError) Unwrap() error { return e.Err }

type TransactionVerifyError struct {
	Reference  string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransactionVerifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verify transaction %s: %v", e.Reference, e.Err)
	}
	return fmt.Sprintf("verify transaction %s: provider returned %d: %s", e.Reference, e.StatusCode, e.Body)
}

func (e *TransactionVerifyError) Unwrap() error { return e.Err }
