package engine

import "fmt"

// ValidationError rejects an engine call before anything is read or written.
// It should be shown to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
