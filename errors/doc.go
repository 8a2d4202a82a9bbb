/*
Package errors provides semantic error types for the entityodm library.

The package defines the failure modes of the object-document mapping layer with
specific types that can be checked using the standard errors.Is() function or
the provided helper functions.

Common Errors:

	var (
	    ErrConfiguration = errors.New("invalid entity configuration")
	    ErrInvalidState  = errors.New("invalid entity state")
	    ErrInvalidInput  = errors.New("invalid input")
	    ErrAlreadyExists = errors.New("entity already exists")
	)

Usage:

	id, err := user.Delete(ctx)
	if err != nil {
	    if errors.IsInvalidState(err) {
	        // the entity was never saved
	    }
	    return err
	}

Records that do not exist are not errors: finders return a nil entity and a nil
error. Errors raised by the underlying document database are passed through
unchanged.
*/
package errors
