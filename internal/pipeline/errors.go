package pipeline

// TransportError reports that an underlying generation call could not
// complete (timeout, connectivity, auth, quota). It is unrecoverable for the
// run: the executor does not retry stages.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "generation call failed: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
