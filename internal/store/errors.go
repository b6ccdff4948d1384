package store

import "fmt"

// DuplicateIDError indicates an insert with an ID that is already live.
type DuplicateIDError struct {
	ID int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("record with ID=%d already exists", e.ID)
}

// NotFoundError indicates an update, delete, or query on an absent ID.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record with ID=%d does not exist", e.ID)
}
