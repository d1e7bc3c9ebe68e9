package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to check out")
	IllegalTransitionError = errors.New("illegal transition of checkout status")
)

// ValidationError carries the field-level error map so the form can stay
// populated and re-editable.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return fmt.Sprintf("checkout validation failed: %s", strings.Join(keys, ", "))
}
