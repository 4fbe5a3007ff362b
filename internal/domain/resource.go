package domain

import "strings"

// Resource represents one schedulable calendar row.
type Resource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewResource constructs a new value for this package.
func NewResource(id, name string) (Resource, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Resource{}, ErrInvalidID
	}
	if name == "" {
		return Resource{}, ErrInvalidName
	}
	return Resource{ID: id, Name: name}, nil
}

// Rename renames the resource.
func (r *Resource) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	r.Name = name
	return nil
}
