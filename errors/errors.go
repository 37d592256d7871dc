// The errors package provides additional error primitives. Its Errors type is
// used to gather non-fatal warnings while decoding.
package errors

import (
	"errors"
	"strings"
)

func New(text string) error {
	return errors.New(text)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Errors is a list of errors.
type Errors []error

// Errors formats the list by separating each message with a newline. Each
// produced line, including lines within messages, is prefixed with a tab.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	default:
		var buf strings.Builder
		buf.WriteString("multiple errors:")
		for _, err := range errs {
			buf.WriteString("\n\t")
			buf.WriteString(strings.ReplaceAll(err.Error(), "\n", "\n\t"))
		}
		return buf.String()
	}
}

// Unwrap returns the members of the list, so that errors.Is and errors.As
// match any of them.
func (errs Errors) Unwrap() []error {
	return errs
}

// Append returns errs with each err appended to it. Arguments that are nil are
// skipped.
func (errs Errors) Append(err ...error) Errors {
	for _, err := range err {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Filter returns the members of errs for which keep returns true.
func (errs Errors) Filter(keep func(error) bool) Errors {
	var e Errors
	for _, err := range errs {
		if keep(err) {
			e = append(e, err)
		}
	}
	return e
}

// Without returns the members of errs that do not match any of targets, as
// reported by errors.Is.
func (errs Errors) Without(targets ...error) Errors {
	return errs.Filter(func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return false
			}
		}
		return true
	})
}

// Return prepares errs to be returned by a function by returning nil if errs is
// empty.
func (errs Errors) Return() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Union receives a number of errors and combines them into one Errors. Any errs
// that are Errors are concatenated directly. Returns nil if all errs are nil or
// empty.
func Union(errs ...error) error {
	return List(errs...).Return()
}

// List is like Union, but always returns an Errors, which is empty if all errs
// are nil or empty. It is used to iterate over a warning that may or may not be
// a list.
func List(errs ...error) Errors {
	var e Errors
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
			continue
		case Errors:
			e = e.Append(err...)
		default:
			e = append(e, err)
		}
	}
	return e
}
