package chat

import "fmt"

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("unexpected failure: %v", e.value)
}
