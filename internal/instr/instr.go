// Package instr implements the linear instruction stream the flattener
// produces: matched OPEN/CLOSE block pairs and symbolic, SSA-style result
// ids, plus JSON encoding and a disassembler for human-readable dumps.
package instr

import (
	"fmt"

	"github.com/ursalang/ursa/internal/ast"
)

// ID names an instruction's result; ids are unique within one flatten
// pass and monotonically increasing in the order they were
// allocated.
type ID int

// Instruction is implemented by every instruction kind. Every
// instruction carries an ID that later instructions reference as an
// operand.
type Instruction interface {
	ResultID() ID
	String() string
	kind() string
}

type base struct {
	ID ID
}

func (b base) ResultID() ID { return b.ID }

// Literal pushes a constant value (by index into the flattener's literal
// pool, tracked out-of-band in Stream.Literals).
type Literal struct {
	base
	LiteralIndex int
}

func (l *Literal) String() string { return fmt.Sprintf("%%%d = literal #%d", l.ID, l.LiteralIndex) }
func (*Literal) kind() string     { return "Literal" }

// LetCopy aliases this instruction's result to an earlier instruction's
// result (used when a block's terminal value must be threaded forward
// without re-evaluating it).
type LetCopy struct {
	base
	Src ID
}

func (l *LetCopy) String() string { return fmt.Sprintf("%%%d = copy %%%d", l.ID, l.Src) }
func (*LetCopy) kind() string     { return "LetCopy" }

// BlockKind discriminates the BlockOpen variants.
type BlockKind interface{ blockKind() string }

// LoopBlock records the compiler's locals-stack depth at loop entry. The
// interpreter does not read it: Break and Continue leave the frame's
// locals in place rather than popping them back to this depth.
type LoopBlock struct{ LocalsDepth int }

func (LoopBlock) blockKind() string { return "Loop" }

// LaunchBlock forks a new cooperative State.
type LaunchBlock struct{}

func (LaunchBlock) blockKind() string { return "Launch" }

// IfBlock gates its body on CondID's value. ElseID is the id of this
// If's ElseBlock marker, or 0 if it has no else-arm; recorded so the
// interpreter can jump straight to the right branch instead of scanning
// the stream for it.
type IfBlock struct {
	CondID ID
	ElseID ID
}

func (IfBlock) blockKind() string { return "If" }

// CallableBlock opens a Fn or Generator body. CaptureSources mirrors
// ast.Fn/Generator's CaptureSources: for each entry of the closure's
// eventual Captures list, where in the *enclosing* frame its cell comes
// from. The interpreter reads these off the current frame when it
// reaches this block under normal sequential flow (i.e. when
// constructing the closure value, not when actually calling it).
type CallableBlock struct {
	Params         []string
	CaptureNames   []string
	CaptureSources []ast.CaptureSource
	Name           string
	IsGenerator    bool
}

func (CallableBlock) blockKind() string { return "Callable" }

// LetBlock opens a `let`; it precedes the Init instructions of its
// bindings, which in turn precede the body. Depth is the frame-relative local index of Vars[0]; the interpreter
// allocates fresh Cells for [Depth, Depth+len(Vars)) on entry, before any
// binding's Init instructions run, so a binding's own (or a sibling's)
// closure can capture the cell while it is still empty.
type LetBlock struct {
	Vars   []string
	ValIDs []ID
	Depth  int
}

func (LetBlock) blockKind() string { return "Let" }

// BlockOpen begins a matched block; its Variant determines
// how the interpreter treats entry into the block.
type BlockOpen struct {
	base
	Variant BlockKind
}

func (b *BlockOpen) String() string {
	return fmt.Sprintf("%%%d = open %s", b.ID, b.Variant.blockKind())
}
func (*BlockOpen) kind() string { return "BlockOpen" }

// BlockClose ends the block opened by MatchingOpen; its result is
// aliased to the open's id so that block values can be
// consumed by the next instruction.
type BlockClose struct {
	base
	MatchingOpen ID
	Variant      string // "Loop" | "Launch" | "Let" | "If" | "Else" | "Fn" | "ElseClose"
}

func (b *BlockClose) String() string {
	return fmt.Sprintf("%%%d = close %s (matches %%%d)", b.ID, b.Variant, b.MatchingOpen)
}
func (*BlockClose) kind() string { return "BlockClose" }

// ElseBlock marks the start of an If's else-arm. It opens no block of its
// own: the terminal BlockClose of the whole If still names the If's
// BlockOpen (IfBlockID) as its MatchingOpen. BlockID is the ElseBlock's
// own id.
type ElseBlock struct {
	base
	IfBlockID ID
	BlockID   ID
}

func (e *ElseBlock) String() string {
	return fmt.Sprintf("%%%d = else (if %%%d)", e.ID, e.IfBlockID)
}
func (*ElseBlock) kind() string { return "ElseBlock" }

// Await suspends until the promise named by ArgID resolves.
type Await struct {
	base
	ArgID ID
}

func (a *Await) String() string { return fmt.Sprintf("%%%d = await %%%d", a.ID, a.ArgID) }
func (*Await) kind() string     { return "Await" }

// Continue jumps to the instruction just after the loop's OPEN; the
// frame's locals are not popped.
type Continue struct {
	base
	Loop ID
}

func (c *Continue) String() string { return fmt.Sprintf("%%%d = continue (loop %%%d)", c.ID, c.Loop) }
func (*Continue) kind() string     { return "Continue" }

// Break exits Loop, carrying ArgID's value (the id of a Null literal for
// a valueless break).
type Break struct {
	base
	ArgID ID
	Loop  ID
}

func (b *Break) String() string {
	return fmt.Sprintf("%%%d = break %%%d (loop %%%d)", b.ID, b.ArgID, b.Loop)
}
func (*Break) kind() string { return "Break" }

// Return exits Fn, carrying ArgID's value.
type Return struct {
	base
	ArgID ID
	Fn    ID
}

func (r *Return) String() string {
	return fmt.Sprintf("%%%d = return %%%d (fn %%%d)", r.ID, r.ArgID, r.Fn)
}
func (*Return) kind() string { return "Return" }

// Yield suspends Fn (a generator body), carrying ArgID's value back to
// the caller/resumer.
type Yield struct {
	base
	ArgID ID
	Fn    ID
}

func (y *Yield) String() string {
	return fmt.Sprintf("%%%d = yield %%%d (fn %%%d)", y.ID, y.ArgID, y.Fn)
}
func (*Yield) kind() string { return "Yield" }

// Call invokes FnID with ArgIDs.
type Call struct {
	base
	FnID   ID
	ArgIDs []ID
	Name   string
}

func (c *Call) String() string {
	return fmt.Sprintf("%%%d = call %%%d(%v) ; %s", c.ID, c.FnID, c.ArgIDs, c.Name)
}
func (*Call) kind() string { return "Call" }

// SetLocal writes ValID into the current frame's local slot Idx.
type SetLocal struct {
	base
	Idx   int
	ValID ID
}

func (s *SetLocal) String() string { return fmt.Sprintf("%%%d = setlocal[%d] %%%d", s.ID, s.Idx, s.ValID) }
func (*SetLocal) kind() string     { return "SetLocal" }

// SetCapture writes ValID into the current frame's capture slot Idx.
type SetCapture struct {
	base
	Idx   int
	ValID ID
}

func (s *SetCapture) String() string {
	return fmt.Sprintf("%%%d = setcapture[%d] %%%d", s.ID, s.Idx, s.ValID)
}
func (*SetCapture) kind() string { return "SetCapture" }

// SetProperty writes ValID into ObjID's Name member.
type SetProperty struct {
	base
	ObjID ID
	Name  string
	ValID ID
}

func (s *SetProperty) String() string {
	return fmt.Sprintf("%%%d = setprop %%%d.%s %%%d", s.ID, s.ObjID, s.Name, s.ValID)
}
func (*SetProperty) kind() string { return "SetProperty" }

// ObjectLiteral builds a Struct from name->id member pairs, in order.
type ObjectLiteral struct {
	base
	TypeName string
	Members  []IDPair
}

// IDPair is a name/ID pair used by ObjectLiteral.
type IDPair struct {
	Name string
	ID   ID
}

func (o *ObjectLiteral) String() string { return fmt.Sprintf("%%%d = object{%v}", o.ID, o.Members) }
func (*ObjectLiteral) kind() string     { return "ObjectLiteral" }

// ListLiteral builds a List from element ids, in order.
type ListLiteral struct {
	base
	ElemIDs []ID
}

func (l *ListLiteral) String() string { return fmt.Sprintf("%%%d = list%v", l.ID, l.ElemIDs) }
func (*ListLiteral) kind() string     { return "ListLiteral" }

// MapLiteral builds a Map from key/value id pairs, in insertion order.
type MapLiteral struct {
	base
	Pairs []IDIDPair
}

// IDIDPair is a key-id/value-id pair used by MapLiteral.
type IDIDPair struct {
	Key ID
	Val ID
}

func (m *MapLiteral) String() string { return fmt.Sprintf("%%%d = map%v", m.ID, m.Pairs) }
func (*MapLiteral) kind() string     { return "MapLiteral" }

// Local reads the current frame's local slot Idx.
type Local struct {
	base
	Idx  int
	Name string
}

func (l *Local) String() string { return fmt.Sprintf("%%%d = local[%d:%s]", l.ID, l.Idx, l.Name) }
func (*Local) kind() string     { return "Local" }

// Capture reads the current frame's capture slot Idx.
type Capture struct {
	base
	Idx  int
	Name string
}

func (c *Capture) String() string { return fmt.Sprintf("%%%d = capture[%d:%s]", c.ID, c.Idx, c.Name) }
func (*Capture) kind() string     { return "Capture" }

// Property reads ObjID's Name member.
type Property struct {
	base
	ObjID ID
	Name  string
}

func (p *Property) String() string { return fmt.Sprintf("%%%d = prop %%%d.%s", p.ID, p.ObjID, p.Name) }
func (*Property) kind() string     { return "Property" }

// The New* constructors below are the only way for internal/flatten (or
// any other package) to build an Instruction: base is unexported so its
// ID field can only be set from within this package.

func NewLiteral(id ID, literalIndex int) *Literal {
	return &Literal{base{id}, literalIndex}
}

func NewLetCopy(id ID, src ID) *LetCopy {
	return &LetCopy{base{id}, src}
}

func NewBlockOpen(id ID, variant BlockKind) *BlockOpen {
	return &BlockOpen{base{id}, variant}
}

func NewBlockClose(id ID, matchingOpen ID, variant string) *BlockClose {
	return &BlockClose{base{id}, matchingOpen, variant}
}

func NewElseBlock(id ID, ifBlockID, blockID ID) *ElseBlock {
	return &ElseBlock{base{id}, ifBlockID, blockID}
}

func NewAwait(id ID, argID ID) *Await {
	return &Await{base{id}, argID}
}

func NewContinue(id ID, loop ID) *Continue {
	return &Continue{base{id}, loop}
}

func NewBreak(id ID, argID, loop ID) *Break {
	return &Break{base{id}, argID, loop}
}

func NewReturn(id ID, argID, fn ID) *Return {
	return &Return{base{id}, argID, fn}
}

func NewYield(id ID, argID, fn ID) *Yield {
	return &Yield{base{id}, argID, fn}
}

func NewCall(id ID, fnID ID, argIDs []ID, name string) *Call {
	return &Call{base{id}, fnID, argIDs, name}
}

func NewSetLocal(id ID, idx int, valID ID) *SetLocal {
	return &SetLocal{base{id}, idx, valID}
}

func NewSetCapture(id ID, idx int, valID ID) *SetCapture {
	return &SetCapture{base{id}, idx, valID}
}

func NewSetProperty(id ID, objID ID, name string, valID ID) *SetProperty {
	return &SetProperty{base{id}, objID, name, valID}
}

func NewObjectLiteral(id ID, typeName string, members []IDPair) *ObjectLiteral {
	return &ObjectLiteral{base{id}, typeName, members}
}

func NewListLiteral(id ID, elemIDs []ID) *ListLiteral {
	return &ListLiteral{base{id}, elemIDs}
}

func NewMapLiteral(id ID, pairs []IDIDPair) *MapLiteral {
	return &MapLiteral{base{id}, pairs}
}

func NewLocal(id ID, idx int, name string) *Local {
	return &Local{base{id}, idx, name}
}

func NewCapture(id ID, idx int, name string) *Capture {
	return &Capture{base{id}, idx, name}
}

func NewProperty(id ID, objID ID, name string) *Property {
	return &Property{base{id}, objID, name}
}
