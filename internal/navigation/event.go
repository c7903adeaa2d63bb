// Package navigation intercepts same-origin navigations and swaps the
// destination page into the current document instead of reloading it.
package navigation

import (
	"net/url"

	"github.com/google/uuid"
)

// NavigationType is how a navigation was triggered.
type NavigationType string

const (
	Push     NavigationType = "push"
	Replace  NavigationType = "replace"
	Reload   NavigationType = "reload"
	Traverse NavigationType = "traverse"
)

// Direction tags the transition of one intercepted navigation.
type Direction string

const (
	Neutral  Direction = "neutral"
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Classify maps a navigation type to its transition direction.
func Classify(t NavigationType) Direction {
	switch t {
	case Traverse:
		return Backward
	case Push:
		return Forward
	default:
		return Neutral
	}
}

// TransitionTypes are the type tags attached to a view transition.
func (d Direction) TransitionTypes() []string {
	switch d {
	case Forward, Backward:
		return []string{string(d)}
	default:
		return []string{}
	}
}

// Event describes one pending navigation.
type Event struct {
	ID              string
	Destination     *url.URL
	Type            NavigationType
	CanIntercept    bool
	HashChange      bool
	DownloadRequest bool
}

// NewEvent builds an interceptable event with a fresh ID.
func NewEvent(dest *url.URL, t NavigationType) Event {
	return Event{
		ID:           uuid.NewString(),
		Destination:  dest,
		Type:         t,
		CanIntercept: true,
	}
}
