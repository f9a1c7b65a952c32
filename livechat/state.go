package livechat

import "strings"

// sessionState tracks where a Session is in its lifecycle. A Session is
// handed to the caller only in stateReady; stateClosed is terminal.
type sessionState int

const (
	stateConnecting sessionState = iota
	stateSubscribing
	stateReady
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateSubscribing:
		return "subscribing"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// disposition is what the receive loop should do with a decoded envelope.
type disposition int

const (
	// dispDiscard drops the frame: reserved protocol events, and application
	// events arriving before the handshake has completed.
	dispDiscard disposition = iota

	// dispAnswerPing replies to a protocol-level keepalive ping.
	dispAnswerPing

	// dispAdvance is a handshake acknowledgement that moves the session to
	// its next state.
	dispAdvance

	// dispDeliver surfaces the frame to the caller as an Event.
	dispDeliver
)

// dispatch classifies an envelope for the given state. It is a pure
// function: the receive loop performs the I/O and state transitions each
// disposition calls for, which keeps the protocol logic testable with
// synthetic frames.
func dispatch(state sessionState, env *envelope) disposition {
	switch {
	case env.Event == eventPing:
		return dispAnswerPing
	case state == stateConnecting && env.Event == eventConnectionEstablished:
		return dispAdvance
	case state == stateSubscribing && env.Event == eventSubscriptionSucceeded:
		return dispAdvance
	case strings.HasPrefix(env.Event, prefixProtocol),
		strings.HasPrefix(env.Event, prefixInternal):
		return dispDiscard
	case state != stateReady:
		return dispDiscard
	default:
		return dispDeliver
	}
}
