package visiology

import "fmt"

// AuthError reports a failed token exchange against the identity service.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("visiology auth failed: %v", e.Err)
	}
	return fmt.Sprintf("visiology auth failed: status %d", e.Status)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RequestError reports a failed platform API call: transport failure,
// non-success status, or an undecodable response body.
type RequestError struct {
	Path   string
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("visiology request %s failed: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("visiology request %s failed: status %d", e.Path, e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }
