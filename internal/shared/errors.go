package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input errors
	ErrNoInput         = fmt.Errorf("no input")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Library and player errors
	ErrTrackNotFound     = fmt.Errorf("track not found")
	ErrTrackUnplayable   = fmt.Errorf("track unplayable")
	ErrCollectionMissing = fmt.Errorf("collection not found")
	ErrPlayerUnavailable = fmt.Errorf("player unavailable")
	ErrPlayerCommand     = fmt.Errorf("player command failed")
	ErrNotPlaying        = fmt.Errorf("player did not start playing")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// Journal errors
	ErrRunNotFound = fmt.Errorf("run not found")
)
