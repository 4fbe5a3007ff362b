package domain

import "errors"

var (
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidTitle      = errors.New("invalid title")
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidRange      = errors.New("invalid date range")
	ErrInvalidEdge       = errors.New("invalid resize edge")
	ErrInvalidResourceID = errors.New("invalid resource id")
)
