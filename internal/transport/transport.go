// Package transport carries blend decisions between the analysis process and
// the display side: an in-process latest-wins queue, a WebSocket broadcast
// for visualizer clients and a UDP publisher for fixed-rate consumers.
package transport

// MessageKind discriminates the closed message variant.
type MessageKind int

const (
	// KindStrength carries a blend strength in [0, 1].
	KindStrength MessageKind = iota
	// KindTerminate tells the receiving loop to shut down.
	KindTerminate
)

func (k MessageKind) String() string {
	switch k {
	case KindStrength:
		return "strength"
	case KindTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Message is the only payload crossing the process boundary. Strength is
// meaningful only for KindStrength.
type Message struct {
	Kind     MessageKind
	Strength float64
}

// StrengthMessage wraps a blend strength.
func StrengthMessage(strength float64) Message {
	return Message{Kind: KindStrength, Strength: strength}
}

// TerminateMessage is the shutdown sentinel.
func TerminateMessage() Message {
	return Message{Kind: KindTerminate}
}

// Transport defines a generic interface for sending blend decisions.
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(msg Message) error
	Close() error
}
