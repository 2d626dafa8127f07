package loader

import "fmt"

// FetchError reports a failure to obtain or decode a source. Status is the
// HTTP status when the server answered with a non-2xx response.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.Status, e.Err)
	case e.Source != "":
		return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("fetch: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
