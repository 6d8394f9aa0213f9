package ranking

import "fmt"

// InvalidHoldingError reports a malformed holding. It is fatal to the
// ranking call: nothing can be ranked against a holding with no valid
// valuation.
type InvalidHoldingError struct {
	Symbol string
	Reason string
}

func (e *InvalidHoldingError) Error() string {
	return fmt.Sprintf("invalid holding %q: %s", e.Symbol, e.Reason)
}

// InvalidQuoteError reports a single malformed quote. It is recoverable:
// the quote is dropped and ranking proceeds with the remaining quotes.
type InvalidQuoteError struct {
	Exchange string
	Index    int
	Reason   string
}

func (e *InvalidQuoteError) Error() string {
	return fmt.Sprintf("invalid quote from %q at index %d: %s", e.Exchange, e.Index, e.Reason)
}
