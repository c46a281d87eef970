package drumkit

import "fmt"

var (
	ErrDuplicateKey   = fmt.Errorf("duplicate trigger key")
	ErrMissingElement = fmt.Errorf("display element not found")
	ErrResourceLoad   = fmt.Errorf("audio resource failed to load")
)
