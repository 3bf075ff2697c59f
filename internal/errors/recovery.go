package errors

import "runtime/debug"

// Guard runs fn and converts a panic into a ParseFailure error carrying the
// stack trace.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			panicErr := Newf(ErrorTypeParseFailure, "panic during extraction: %v", r)
			panicErr.StackTrace = string(debug.Stack())
			err = panicErr
		}
	}()
	return fn()
}

// AsSourceFailure wraps err as a SourceFailure unless it already is a
// ConversionError.
func AsSourceFailure(err error, context string) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*ConversionError); ok {
		return ce
	}
	return WrapError(ErrorTypeSourceFailure, err).WithContext(context)
}
