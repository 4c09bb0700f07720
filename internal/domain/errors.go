package domain

import "errors"

// Provider failures. These are recovered at the boundary and shown to the user.
var (
	ErrNotFound = errors.New("no matching place")
	ErrNoRoute  = errors.New("no route between waypoints")
	ErrProvider = errors.New("provider error")
)

// Store contract violations. A correct caller never triggers these.
var (
	ErrInvalidPermutation = errors.New("order is not a permutation of current waypoints")
	ErrDuplicateID        = errors.New("duplicate waypoint id")
)

var (
	ErrInsufficientWaypoints = errors.New("at least two waypoints are required")
	ErrUnknownWaypoint       = errors.New("waypoint not found")
	ErrStaleRoute            = errors.New("itinerary changed while route was computing")
	ErrInvalidTimeKind       = errors.New("time kind must be arrival or departure")
	ErrInvalidCoordinates    = errors.New("invalid coordinates")
	ErrSessionNotFound       = errors.New("session not found")
	ErrTooManySessions       = errors.New("session limit reached")
)
