package object

import "fmt"

// Status is the lifecycle state of a tracked object.
type Status int

const (
	// StatusConstructing is the state inside Create, before the create
	// command is staged. Property changes apply directly.
	StatusConstructing Status = iota
	StatusOnCreate
	StatusCreated
	StatusOnDestroy
	StatusDestroyed
	// StatusDestructing is the terminal state entered on finalization.
	StatusDestructing
)

var statusNames = [...]string{
	StatusConstructing: "constructing",
	StatusOnCreate:     "on_create",
	StatusCreated:      "created",
	StatusOnDestroy:    "on_destroy",
	StatusDestroyed:    "destroyed",
	StatusDestructing:  "destructing",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}
