package kanim

import "fmt"

// Entry is one row of a CommandList.
type Entry struct {
	Command Command
	Enabled bool
	// Folded is an editor presentation flag; it has no effect on playback.
	Folded bool
}

// CommandList is the ordered, mutable list of commands. It is pure data: the
// review protocol that keeps derived state current lives on State.
type CommandList struct {
	entries []Entry
}

// Len returns the number of entries.
func (l *CommandList) Len() int { return len(l.entries) }

// At returns the entry at index i.
func (l *CommandList) At(i int) (Entry, error) {
	if i < 0 || i >= len(l.entries) {
		return Entry{}, indexError(i, len(l.entries))
	}
	return l.entries[i], nil
}

// Entries returns the list contents. The returned slice MUST NOT be mutated.
func (l *CommandList) Entries() []Entry { return l.entries }

// Append adds an enabled command at the end of the list.
func (l *CommandList) Append(cmd Command) {
	l.entries = append(l.entries, Entry{Command: cmd, Enabled: true})
}

// Insert adds an enabled command so that it ends up at index at. at may equal
// Len() to append.
func (l *CommandList) Insert(at int, cmd Command) error {
	if at < 0 || at > len(l.entries) {
		return indexError(at, len(l.entries))
	}
	l.entries = append(l.entries, Entry{})
	copy(l.entries[at+1:], l.entries[at:])
	l.entries[at] = Entry{Command: cmd, Enabled: true}
	return nil
}

// SetEnabled enables or disables the entry at index i.
func (l *CommandList) SetEnabled(i int, enabled bool) error {
	if i < 0 || i >= len(l.entries) {
		return indexError(i, len(l.entries))
	}
	l.entries[i].Enabled = enabled
	return nil
}

// SetFolded sets the editor fold flag of the entry at index i.
func (l *CommandList) SetFolded(i int, folded bool) error {
	if i < 0 || i >= len(l.entries) {
		return indexError(i, len(l.entries))
	}
	l.entries[i].Folded = folded
	return nil
}

// Delete removes the entry at index i and returns it.
func (l *CommandList) Delete(i int) (Entry, error) {
	if i < 0 || i >= len(l.entries) {
		return Entry{}, indexError(i, len(l.entries))
	}
	e := l.entries[i]
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return e, nil
}

// Replace swaps the command at index i, keeping its flags.
func (l *CommandList) Replace(i int, cmd Command) error {
	if i < 0 || i >= len(l.entries) {
		return indexError(i, len(l.entries))
	}
	l.entries[i].Command = cmd
	return nil
}

// SetArgs re-parses the command at index i with new arguments. On error the
// entry is left unchanged.
func (l *CommandList) SetArgs(i int, args []any) error {
	if i < 0 || i >= len(l.entries) {
		return indexError(i, len(l.entries))
	}
	cmd, err := ParseCommand(l.entries[i].Command.Name(), args)
	if err != nil {
		return err
	}
	l.entries[i].Command = cmd
	return nil
}

// Rearrange moves the entry at from to the insertion slot to, where slots are
// numbered against the list before the move: slot k sits just before the
// entry at k and slot Len() is the end. It returns the final index of the
// moved entry.
//
// Moving backward (to <= from) lands the entry at index to. Moving forward
// lands it at to-1, because removing it first shifts the tail down by one.
func (l *CommandList) Rearrange(from, to int) (int, error) {
	n := len(l.entries)
	if from < 0 || from >= n {
		return 0, indexError(from, n)
	}
	if to < 0 || to > n {
		return 0, indexError(to, n)
	}
	target := to
	if from < to {
		target--
	}
	if target == from {
		return from, nil
	}
	e := l.entries[from]
	if from < target {
		copy(l.entries[from:target], l.entries[from+1:target+1])
	} else {
		copy(l.entries[target+1:from+1], l.entries[target:from])
	}
	l.entries[target] = e
	return target, nil
}

// Clear removes every entry.
func (l *CommandList) Clear() {
	l.entries = l.entries[:0]
}

func indexError(i, n int) error {
	return fmt.Errorf("%w: %d not in list of %d", ErrInvalidIndex, i, n)
}

// lastEnabled scans tail-to-head and returns the first enabled command that
// match accepts.
func lastEnabled(entries []Entry, match func(Command) bool) (Command, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Enabled && match(e.Command) {
			return e.Command, true
		}
	}
	return nil, false
}
