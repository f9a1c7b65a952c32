package livechat

import "fmt"

// ConnectError reports a failure to establish and subscribe a live chat
// session. The transport is closed before it is returned; retry Connect
// from scratch.
type ConnectError struct {
	ChatroomID int64
	Err        error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("livechat: connecting to chatroom %d: %v", e.ChatroomID, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// TransportError reports a send or receive failure on an established
// session. The session is unusable afterwards; reconnect to recover.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("livechat: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
