package instr

import (
	"fmt"
	"io"
	"strings"
)

// Disassembler renders a Stream as an indented, human-readable listing,
// walking matched
// blocks (rather than byte-packed jump offsets) to produce indentation.
type Disassembler struct {
	stream *Stream
	out    io.Writer
}

// NewDisassembler returns a Disassembler that writes to out.
func NewDisassembler(s *Stream, out io.Writer) *Disassembler {
	return &Disassembler{stream: s, out: out}
}

// Disassemble writes the full listing.
func (d *Disassembler) Disassemble() {
	depth := 0
	for _, in := range d.stream.Instrs {
		switch in.(type) {
		case *BlockClose, *ElseBlock:
			depth--
		}
		if depth < 0 {
			depth = 0
		}
		fmt.Fprintf(d.out, "%s%s\n", strings.Repeat("  ", depth), in.String())
		switch in.(type) {
		case *BlockOpen, *ElseBlock:
			depth++
		}
	}
}
