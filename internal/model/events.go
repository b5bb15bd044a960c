package model

import "time"

// ChangeKind tags what happened to an entity
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeRemove ChangeKind = "remove"
)

// Event is a change pushed to connected clients
type Event struct {
	Kind      ChangeKind `json:"kind"`
	Entity    Entity     `json:"entity"`
	Data      any        `json:"data"`
	Timestamp time.Time  `json:"timestamp"`
}
