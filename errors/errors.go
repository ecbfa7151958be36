package errors

import "errors"

// Inconceivable is the panic value for states the code guarantees cannot happen.
var Inconceivable = errors.New("inconceivable")
