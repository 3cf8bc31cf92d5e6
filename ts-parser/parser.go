// Package tsparser checks JavaScript syntax with tree-sitter. It is an
// independent second opinion on what the evaluator's parser accepts.
package tsparser

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	ts "github.com/smacker/go-tree-sitter"
	javascript "github.com/smacker/go-tree-sitter/javascript"
)

// SyntaxError points at the first node tree-sitter could not parse.
type SyntaxError struct {
	Path string
	// 1-based
	Line, Column int
	// NodeType is "ERROR" or the type of a node the parser had to invent.
	NodeType string
	Missing  bool
}

func (serr *SyntaxError) Error() string {
	what := "unexpected input"
	if serr.Missing {
		what = "missing " + serr.NodeType
	}
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", serr.Path, serr.Line, serr.Column, what)
}

func ParseReader(ctx context.Context, path string, rdr io.Reader) error {
	src, err := io.ReadAll(rdr)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return ParseBytes(ctx, path, src)
}

// ParseBytes returns a *SyntaxError when src does not parse cleanly.
func ParseBytes(ctx context.Context, path string, src []byte) error {
	parser := ts.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	bad := firstError(root)
	if bad == nil {
		// HasError without a culprit; blame the whole file
		bad = root
	}
	pos := bad.StartPoint()
	return &SyntaxError{
		Path:     path,
		Line:     int(pos.Row) + 1,
		Column:   int(pos.Column) + 1,
		NodeType: bad.Type(),
		Missing:  bad.IsMissing(),
	}
}

// firstError finds the first ERROR or MISSING node in source order.
func firstError(root *ts.Node) *ts.Node {
	stack := []*ts.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.Type() == "ERROR" || node.IsMissing() {
			return node
		}
		if !node.HasError() {
			continue
		}
		// children pushed in reverse so that the leftmost is visited first
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.Child(i))
		}
	}
	return nil
}
