// Package multierr collects the errors of steps that are allowed to fail
// independently of each other
package multierr

import "strings"

type Err []error

func (me Err) Error() string {
	var builder strings.Builder
	for i, err := range me {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(err.Error())
	}
	return builder.String()
}

func (me Err) Len() int {
	return len(me)
}

func (me Err) Unwrap() []error {
	return me
}

// Add appends err if it's not nil
func (me *Err) Add(err error) {
	if err == nil {
		return
	}
	*me = append(*me, err)
}

// ErrOrNil returns nil if nothing was added, so that an empty Err doesn't end up
// as a non nil error interface
func (me Err) ErrOrNil() error {
	if len(me) == 0 {
		return nil
	}
	return me
}
