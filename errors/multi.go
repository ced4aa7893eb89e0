package errors

import "strings"

// Append combines given errors into a single error instance. nil values are
// ignored. If no error is given, nil is returned. If only one error is
// present, it is returned as it is.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		switch e := err.(type) {
		case nil:
		case multiErr:
			res = append(res, e...)
		default:
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr is an ordered list of errors. Use Append to create it.
type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
