package conversation

import "errors"

var (
	// ErrValidation is returned for blank user input.
	ErrValidation = errors.New("conversation: message content must not be blank")
	// ErrNotFound is returned when no in-progress message matches an id.
	ErrNotFound = errors.New("conversation: no in-progress message with that id")
	// ErrBusy is returned while another assistant message is still streaming.
	ErrBusy = errors.New("conversation: an assistant reply is already in progress")
)
