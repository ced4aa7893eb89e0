/*
Package errors implements the error kinds used across the matching ledger.

Reuse the kinds declared here whenever possible and register a custom one
only when a caller must be able to tell it apart. Each kind carries a
numeric code that is unique for the whole program.

To create an error instance use Wrap or Wrapf on one of the declared kinds
at the point of creation, so that a stacktrace is attached:

	return errors.Wrapf(errors.ErrAmount, "cannot rescind %s", amount)

Test for a kind with the Is method. Wrapping preserves the kind:

	if errors.ErrNotFound.Is(err) {
		...
	}

Once you have an error, use fmt to get more context:

	%s is just the error message
	%+v is the full stack trace
*/
package errors
