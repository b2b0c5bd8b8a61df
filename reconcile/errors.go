package reconcile

import "fmt"

// UnclassifiedInterfaceError - Interface name matching none of the known kinds.
type UnclassifiedInterfaceError struct {
	Name string
}

// Error implements the error interface.
func (e *UnclassifiedInterfaceError) Error() string {
	return fmt.Sprintf("unclassified interface %v", e.Name)
}
