// Package resolve turns slug lookups against the backend into a small,
// fixed set of outcomes and tracks the latest lookup per browsing view.
package resolve

import (
	"encoding/json"

	"github.com/pavitra93/menulink/shared/backend"
)

// Kind is the classified outcome of a backend lookup
type Kind string

const (
	KindReady    Kind = "ready"
	KindNotFound Kind = "not_found"
	KindInactive Kind = "inactive"
	KindOther    Kind = "other"
)

// TransportFailureMessage is shown when no usable response arrived
const TransportFailureMessage = "Something went wrong. Please try again later."

// Subject supplies the fallback messages for one resolution shape
type Subject struct {
	NotFound string
	Inactive string
	Other    string
}

var (
	// RestaurantSubject is used for menu lookups
	RestaurantSubject = Subject{
		NotFound: "Restaurant not found",
		Inactive: "Membership is not active",
		Other:    "Failed to load restaurant",
	}
	// DocumentSubject is used for PDF lookups
	DocumentSubject = Subject{
		NotFound: "PDF not found",
		Inactive: "Membership is not active",
		Other:    "Failed to load PDF",
	}
)

// Outcome is exactly one of ready, not found, inactive or other
type Outcome struct {
	Kind    Kind
	Message string
	// Payload is the raw envelope, set only when Kind is KindReady
	Payload []byte
}

// envelope carries the markers the classifier reads. Pointers distinguish
// an explicit false from an absent field.
type envelope struct {
	Success    bool   `json:"success"`
	Slug       *bool  `json:"slug"`
	Membership *bool  `json:"membership"`
	Message    string `json:"message"`
}

// Classify maps a backend answer (or the error that replaced it) to an
// outcome. Every input maps to exactly one outcome; KindOther is the catch-all.
func Classify(subject Subject, resp *backend.Response, err error) Outcome {
	if err != nil || resp == nil {
		return Outcome{Kind: KindOther, Message: TransportFailureMessage}
	}

	var env envelope
	if jsonErr := json.Unmarshal(resp.Body, &env); jsonErr != nil {
		return Outcome{Kind: KindOther, Message: TransportFailureMessage}
	}

	if resp.OK() && env.Success {
		return Outcome{Kind: KindReady, Payload: resp.Body}
	}

	switch {
	case env.Slug != nil && !*env.Slug:
		return Outcome{Kind: KindNotFound, Message: orDefault(env.Message, subject.NotFound)}
	case env.Membership != nil && !*env.Membership:
		return Outcome{Kind: KindInactive, Message: orDefault(env.Message, subject.Inactive)}
	default:
		return Outcome{Kind: KindOther, Message: orDefault(env.Message, subject.Other)}
	}
}

func orDefault(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
