package client

import "fmt"

// APIError is a non-2xx answer from the server, carrying its "error" message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shelf-manager API: HTTP %d", e.Status)
	}
	return fmt.Sprintf("shelf-manager API: HTTP %d: %s", e.Status, e.Message)
}
