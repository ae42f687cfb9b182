package attach

import "fmt"

// InvalidValueError reports a DSL command value a verb could not accept,
// e.g. a degenerate crop box.
type InvalidValueError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %q (%s)", e.Key, e.Value, e.Reason)
}

// InvalidValue builds an InvalidValueError.
func InvalidValue(key, value, reason string) error {
	return &InvalidValueError{Key: key, Value: value, Reason: reason}
}
