package key

import "fmt"

// InvalidKeyError is returned when a physical key cannot be parsed.
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Key, e.Reason)
}
