package kraken

import "errors"

var (
	// ErrUnexpectedJSONInput is wrapped by every ticker decode failure.
	ErrUnexpectedJSONInput = errors.New("unexpected JSON input")

	ErrMissingField   = errors.New("missing ticker field")
	ErrMalformedField = errors.New("malformed ticker field")
	ErrInvalidPrice   = errors.New("invalid price record")

	// ErrAPI is returned when Kraken answers with a non-empty error list.
	ErrAPI = errors.New("kraken api error")
)
