package source

import (
	"errors"
	"fmt"
)

// Sentinel kinds for source errors.
var (
	ErrSourceUnavailable = errors.New("data source unavailable")
	ErrSourceNotFound    = fmt.Errorf("%w: file not found", ErrSourceUnavailable)
)
