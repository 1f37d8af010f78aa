package marstek

import "sync"

// PortGate serializes bind/send/receive sequences on a local UDP port.
// Some Marstek firmwares require the request source port to equal the
// device port, so concurrent transactions would otherwise race on the
// same bind.
type PortGate struct {
	mu    sync.Mutex
	gates map[int]*sync.Mutex
}

func NewPortGate() *PortGate {
	return &PortGate{
		gates: make(map[int]*sync.Mutex),
	}
}

// Acquire locks the gate for the given local port and returns the
// release function. Gates are created lazily and live for the lifetime
// of the registry. Callers on different ports never block each other.
func (g *PortGate) Acquire(port int) func() {
	g.mu.Lock()
	gate, ok := g.gates[port]
	if !ok {
		gate = &sync.Mutex{}
		g.gates[port] = gate
	}
	g.mu.Unlock()

	gate.Lock()
	return gate.Unlock
}
