package cv

import "fmt"

// EntryNotFoundError is returned when a section-level update targets an ID that is not in the document.
type EntryNotFoundError struct {
	Section string
	ID      string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("%s entry %q not found", e.Section, e.ID)
}
