// Package upstream holds the clients for the third-party REST APIs that feed a
// recommendation: OpenWeather, RestCountries, OpenTripMap, Wikivoyage and
// Spoonacular. Every call returns an Outcome so callers can tell "nothing
// there" apart from "could not ask".
package upstream

import (
	"errors"
)

var (
	ErrNotFound    = errors.New("upstream: not found")
	ErrUnavailable = errors.New("upstream: unavailable")
)

type Status int

const (
	Success Status = iota
	NotFound
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	default:
		return "unavailable"
	}
}

// Outcome is the result of one upstream call. Value is only meaningful when
// Status is Success; Err is set otherwise.
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
}

func (o Outcome[T]) OK() bool { return o.Status == Success }

func Found[T any](v T) Outcome[T] {
	return Outcome[T]{Status: Success, Value: v}
}

func Missing[T any](err error) Outcome[T] {
	if err == nil {
		err = ErrNotFound
	}
	return Outcome[T]{Status: NotFound, Err: err}
}

func Failed[T any](err error) Outcome[T] {
	if err == nil {
		err = ErrUnavailable
	}
	return Outcome[T]{Status: Unavailable, Err: err}
}

// FromError builds a failed Outcome from err, NotFound when err wraps
// ErrNotFound and Unavailable otherwise.
func FromError[T any](err error) Outcome[T] {
	if errors.Is(err, ErrNotFound) {
		return Missing[T](err)
	}
	return Failed[T](err)
}
