package stream

import (
	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/lib"
)

// SessionConfig is the optional first message a client sends.
type SessionConfig struct {
	// Interval is the pause between elements.
	Interval lib.Duration `json:"interval"`
}

const (
	typeNode = "node"
	typeEdge = "edge"
	typeDone = "done"
)

type message struct {
	Type string            `json:"type"`
	Data *elements.Element `json:"data,omitempty"`
}

func elementMessage(e elements.Element) message {
	t := typeNode
	if e.IsEdge() {
		t = typeEdge
	}
	return message{Type: t, Data: &e}
}

func doneMessage() message {
	return message{Type: typeDone}
}
