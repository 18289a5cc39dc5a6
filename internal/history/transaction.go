package history

// Command is a unit of reversible mutation.
//
// Apply(false) followed by Apply(true) must restore the prior observable
// state exactly; repeated alternating calls toggle indefinitely.
type Command interface {
	Apply(reverse bool)
}

// Discarder is implemented by commands with a side effect on removal from
// history. Discard is called exactly once, when the owning transaction is
// cleared.
type Discarder interface {
	Discard()
}

// Transaction is an ordered sequence of commands, stored in the order they
// were applied.
type Transaction struct {
	commands []Command
	reverse  bool
}

// IsEmpty reports whether the transaction holds no commands.
func (t *Transaction) IsEmpty() bool {
	return len(t.commands) == 0
}

// Len returns the number of commands in the transaction.
func (t *Transaction) Len() int {
	return len(t.commands)
}

// Apply invokes cmd in the transaction's current direction and appends it.
func (t *Transaction) Apply(cmd Command) {
	cmd.Apply(t.reverse)
	t.commands = append(t.commands, cmd)
}

// Reverse flips the direction, reverses the stored order in place, and
// re-applies every command in the new order. Calling it twice restores the
// original order and state.
func (t *Transaction) Reverse() {
	t.reverse = !t.reverse
	for i, j := 0, len(t.commands)-1; i < j; i, j = i+1, j-1 {
		t.commands[i], t.commands[j] = t.commands[j], t.commands[i]
	}
	for _, cmd := range t.commands {
		cmd.Apply(t.reverse)
	}
}

// Clear drops every command in stored order, discarding those that
// implement Discarder, and resets the direction.
func (t *Transaction) Clear() {
	// Note: discard order is significant
	for i, cmd := range t.commands {
		t.commands[i] = nil
		if d, ok := cmd.(Discarder); ok {
			d.Discard()
		}
	}
	t.commands = nil
	t.reverse = false
}
