package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/lgbarn/uci-analysis-go/internal/engine"
)

// lineWriter handles formatted output with line length control.
type lineWriter struct {
	w             io.Writer
	indent        string
	lineLength    int
	maxLineLength int
	needsSpace    bool
}

func newLineWriter(w io.Writer, maxLineLength int) *lineWriter {
	if maxLineLength <= 0 {
		maxLineLength = 80
	}
	return &lineWriter{w: w, maxLineLength: maxLineLength}
}

// Write writes a word, breaking the line when it would get too long.
// Continuation lines start with the current indent.
func (o *lineWriter) Write(s string) {
	if o.needsSpace && len(s) > 0 {
		if o.lineLength+1+len(s) > o.maxLineLength {
			fmt.Fprint(o.w, "\n"+o.indent)
			o.lineLength = len(o.indent)
		} else {
			fmt.Fprint(o.w, " ")
			o.lineLength++
		}
	}
	fmt.Fprint(o.w, s)
	o.lineLength += len(s)
	o.needsSpace = true
}

// NewLine ends the current line.
func (o *lineWriter) NewLine() {
	fmt.Fprintln(o.w)
	o.lineLength = 0
	o.needsSpace = false
}

// writeText renders rec as:
//
//	label depth 20  nodes 1234567  time 1500ms [cached]
//	  1. +0.35 e4 e5 Nf3 Nc6 ...
func writeText(w io.Writer, rec Record, precision, maxLineLength int) error {
	var sb strings.Builder
	ow := newLineWriter(&sb, maxLineLength)

	label := rec.Label
	if label == "" && rec.Eval != nil {
		label = rec.Eval.FEN
	}
	ow.Write(label)

	switch {
	case rec.Err != nil:
		ow.Write("error: " + rec.Err.Error())
		ow.NewLine()
	case rec.Eval == nil:
		ow.Write("no result")
		ow.NewLine()
	default:
		writeEvalText(ow, rec, precision)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeEvalText(ow *lineWriter, rec Record, precision int) {
	ev := rec.Eval
	ow.Write(fmt.Sprintf("depth %d  nodes %d  time %dms", ev.Depth, ev.Nodes, ev.Time))
	if rec.Cached {
		ow.Write("[cached]")
	}
	ow.NewLine()

	for _, bm := range ev.BestMoves {
		prefix := fmt.Sprintf("  %d. %s", bm.MultiPV, engine.FormatScore(bm.Score, precision))
		ow.indent = strings.Repeat(" ", len(prefix)+1)
		ow.Write(prefix)
		moves := bm.SANMoves
		if len(moves) == 0 {
			moves = bm.UCIMoves
		}
		for _, m := range moves {
			ow.Write(m)
		}
		ow.NewLine()
	}
	ow.indent = ""
}
