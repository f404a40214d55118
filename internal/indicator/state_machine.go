package indicator

import "sync"

// StateMachine remembers the last state dispatched per channel and suppresses
// commands that would not change anything. Safe for concurrent use.
type StateMachine struct {
	mu   sync.Mutex
	last map[Channel]State
}

// NewStateMachine returns a machine with every channel in the unknown state.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		last: make(map[Channel]State),
	}
}

// Apply records state for channel and returns the command to dispatch.
// ok is false when state equals the last dispatched state.
func (m *StateMachine) Apply(channel Channel, state State) (cmd Command, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, exists := m.last[channel]; exists && prev == state {
		return Command{}, false
	}

	m.last[channel] = state
	return Command{Channel: channel, State: state}, true
}

// Reset forgets the last state for channel so the next Apply always emits.
func (m *StateMachine) Reset(channel Channel) {
	m.mu.Lock()
	delete(m.last, channel)
	m.mu.Unlock()
}

// ResetAll resets every channel.
func (m *StateMachine) ResetAll() {
	m.mu.Lock()
	clear(m.last)
	m.mu.Unlock()
}

// Last returns the last dispatched state for channel, if any.
func (m *StateMachine) Last(channel Channel) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.last[channel]
	return s, ok
}

// Snapshot copies the known channel states.
func (m *StateMachine) Snapshot() map[Channel]State {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[Channel]State, len(m.last))
	for ch, s := range m.last {
		out[ch] = s
	}
	return out
}
