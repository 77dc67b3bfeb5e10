package model

// Task is a to-do item. ID is assigned by the caller; uniqueness within a
// backend is the caller's responsibility.
type Task struct {
	ID     int64  `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Status bool   `json:"status" bson:"status"`
}
