package interp

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/robertkrimen/otto/ast"
	parserFile "github.com/robertkrimen/otto/file"
)

// PrintAST writes the syntax tree of a script, one node per line, indented
// by depth. Nodes that fit on one line are followed by their source text.
func PrintAST(w io.Writer, path string, rdr io.Reader) error {
	program, err := ParseReader(path, rdr, false)
	if err != nil {
		return err
	}

	p := &printer{w: w, file: program.File}
	ast.Walk(p, program)
	return p.err
}

type printer struct {
	w      io.Writer
	file   *parserFile.File
	indent int
	err    error
}

func (p *printer) Enter(n ast.Node) ast.Visitor {
	p.indent++
	if p.err != nil {
		return p
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("|   ", p.indent-1))
	sb.WriteString(reflect.TypeOf(n).String())

	src := p.file.Source()
	base := parserFile.Idx(p.file.Base())
	start, end := int(n.Idx0()-base), int(n.Idx1()-base)
	if 0 <= start && start <= end && end <= len(src) {
		if sub := src[start:end]; !strings.Contains(sub, "\n") {
			if pos := p.file.Position(n.Idx0()); pos != nil {
				fmt.Fprintf(&sb, ":  %d:%d", pos.Line, pos.Column)
			}
			sb.WriteString("  ")
			sb.WriteString(sub)
		}
	}
	sb.WriteByte('\n')

	_, p.err = io.WriteString(p.w, sb.String())
	return p
}

func (p *printer) Exit(n ast.Node) {
	p.indent--
}
