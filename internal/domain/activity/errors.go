package activity

import "errors"

var (
	// ErrOffline indicates the network tier was skipped because the monitor
	// reports no connectivity.
	ErrOffline = errors.New("offline")
	// ErrNoCachedData indicates the durable cache holds no live entries for
	// the requested category.
	ErrNoCachedData = errors.New("no cached activities")
	// ErrInvalidCategory indicates an unknown category was requested.
	ErrInvalidCategory = errors.New("invalid activity category")
)
