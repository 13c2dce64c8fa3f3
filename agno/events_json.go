// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"encoding/json"
	"fmt"
)

// decodeEvent parses one complete frame into its concrete [Event]
// variant. Unknown tags map to [UnrecognizedEvent]; a frame that is not
// a JSON object with an "event" tag returns an error, which the decoder
// converts into a [ParseErrorEvent].
func decodeEvent(frame []byte) (Event, error) {
	var envelope struct {
		Event RunEvent `json:"event"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if envelope.Event == "" {
		return nil, fmt.Errorf("%w: frame missing event tag", ErrDecode)
	}

	ev := newEvent(envelope.Event)
	if ev == nil {
		unrec := &UnrecognizedEvent{Tag: string(envelope.Event), Raw: append([]byte(nil), frame...)}
		// Best effort on the common fields; the raw frame is kept either way.
		_ = json.Unmarshal(frame, &unrec.eventBase)
		return unrec, nil
	}

	if err := json.Unmarshal(frame, ev); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", ErrDecode, envelope.Event, err)
	}
	return ev, nil
}

// newEvent returns a zero value of the concrete type for tag, or nil
// for tags this client does not know.
func newEvent(tag RunEvent) Event {
	switch tag {
	case EventRunStarted:
		return &RunStartedEvent{}
	case EventRunContent:
		return &RunContentEvent{}
	case EventRunCompleted:
		return &RunCompletedEvent{}
	case EventRunError:
		return &RunErrorEvent{}
	case EventRunCancelled:
		return &RunCancelledEvent{}
	case EventRunPaused:
		return &RunPausedEvent{}
	case EventRunContinued:
		return &RunContinuedEvent{}
	case EventToolCallStarted:
		return &ToolCallStartedEvent{}
	case EventToolCallCompleted:
		return &ToolCallCompletedEvent{}
	case EventReasoningStarted:
		return &ReasoningStartedEvent{}
	case EventReasoningStep:
		return &ReasoningStepEvent{}
	case EventReasoningCompleted:
		return &ReasoningCompletedEvent{}
	case EventMemoryUpdateStarted:
		return &MemoryUpdateStartedEvent{}
	case EventMemoryUpdateCompleted:
		return &MemoryUpdateCompletedEvent{}
	case EventTeamRunStarted:
		return &TeamRunStartedEvent{}
	case EventTeamRunContent:
		return &TeamRunContentEvent{}
	case EventTeamRunCompleted:
		return &TeamRunCompletedEvent{}
	case EventTeamRunError:
		return &TeamRunErrorEvent{}
	case EventTeamRunCancelled:
		return &TeamRunCancelledEvent{}
	case EventTeamRunPaused:
		return &TeamRunPausedEvent{}
	case EventTeamRunContinued:
		return &TeamRunContinuedEvent{}
	case EventTeamToolCallStarted:
		return &TeamToolCallStartedEvent{}
	case EventTeamToolCallCompleted:
		return &TeamToolCallCompletedEvent{}
	case EventCustom:
		return &CustomEvent{}
	default:
		return nil
	}
}
