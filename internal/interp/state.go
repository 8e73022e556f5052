package interp

import "github.com/ursalang/ursa/internal/instr"

// State is one running (or suspended) execution cursor: a position in a
// Stream, the Frame it is stepping against, a link to the State that
// called into it (for Return's pop-and-deliver and for tracebacks), and
// the stack of Loop blocks currently open so Break/Continue can find
// their target without rescanning the stream.
type State struct {
	Stream    *instr.Stream
	PC        int
	Frame     *Frame
	Outer     *State
	LoopStack []loopEntry
}

type loopEntry struct {
	OpenID    instr.ID
	OpenIndex int
}

func newState(stream *instr.Stream, pc int, frame *Frame, outer *State) *State {
	return &State{Stream: stream, PC: pc, Frame: frame, Outer: outer}
}

func (st *State) pushLoop(openID instr.ID, openIndex int) {
	st.LoopStack = append(st.LoopStack, loopEntry{OpenID: openID, OpenIndex: openIndex})
}

func (st *State) popLoop() {
	st.LoopStack = st.LoopStack[:len(st.LoopStack)-1]
}

func (st *State) currentLoop() (loopEntry, bool) {
	if len(st.LoopStack) == 0 {
		return loopEntry{}, false
	}
	return st.LoopStack[len(st.LoopStack)-1], true
}

// findLoop locates the (possibly non-topmost) loop entry matching id, as
// Break/Continue always target the statically enclosing loop that the
// flattener already resolved; topmost is the common case.
func (st *State) findLoop(id instr.ID) (loopEntry, int, bool) {
	for i := len(st.LoopStack) - 1; i >= 0; i-- {
		if st.LoopStack[i].OpenID == id {
			return st.LoopStack[i], i, true
		}
	}
	return loopEntry{}, 0, false
}
