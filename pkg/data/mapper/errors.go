package mapper

import "fmt"

// ConfigurationError reports malformed configuration data. It always names
// the offending key.
type ConfigurationError struct {
	Key     string
	Value   any
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error for key %q: %s", e.Key, e.Message)
	if e.Value != nil {
		msg = fmt.Sprintf("%s (value: %v)", msg, e.Value)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func unknownKey(key string) error {
	return &ConfigurationError{Key: key, Message: "unknown property"}
}
