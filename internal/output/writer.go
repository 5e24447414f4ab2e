// Package output renders finished evaluations as text or JSON.
package output

import (
	"encoding/json"
	"io"

	"github.com/lgbarn/uci-analysis-go/internal/engine"
)

// Record is one evaluated position as handed to a writer.
type Record struct {
	Label  string             // Caller's identifier for the position
	Eval   *engine.EvalResult // nil when the analysis produced nothing
	Cached bool
	Err    error
}

// EvalWriter is the interface for writing evaluations to output.
type EvalWriter interface {
	// WriteEval writes a single record to the output.
	WriteEval(rec Record) error

	// Flush flushes any buffered data to the underlying writer.
	Flush() error

	// Close closes the writer. For batch writers (like JSON), this also
	// writes any pending output.
	Close() error
}

// TextWriter writes evaluations as human-readable text, one block per
// record with a line per principal variation.
type TextWriter struct {
	w             io.Writer
	precision     int
	maxLineLength int
}

// NewTextWriter creates a text writer. precision is the number of decimals
// for centipawn scores; maxLineLength wraps long variations (0 for 80).
func NewTextWriter(w io.Writer, precision, maxLineLength int) *TextWriter {
	if precision < 0 {
		precision = 2
	}
	return &TextWriter{w: w, precision: precision, maxLineLength: maxLineLength}
}

// WriteEval writes rec immediately.
func (tw *TextWriter) WriteEval(rec Record) error {
	return writeText(tw.w, rec, tw.precision, tw.maxLineLength)
}

// Flush is a no-op; text is written immediately.
func (tw *TextWriter) Flush() error {
	return nil
}

// Close closes the text writer.
func (tw *TextWriter) Close() error {
	return nil
}

// JSONWriter writes evaluations in JSON format.
// It buffers records and writes them as one document on Close or Flush.
type JSONWriter struct {
	w         io.Writer
	precision int
	records   []Record
	single    bool // If true, write each record immediately instead of batching
}

// NewJSONWriter creates a JSON writer that batches records and writes them
// as an array on Close().
func NewJSONWriter(w io.Writer, precision int) *JSONWriter {
	return &JSONWriter{
		w:         w,
		precision: precision,
		records:   make([]Record, 0),
	}
}

// NewJSONWriterSingle creates a JSON writer that writes each record
// immediately as one compact line.
func NewJSONWriterSingle(w io.Writer, precision int) *JSONWriter {
	return &JSONWriter{
		w:         w,
		precision: precision,
		single:    true,
	}
}

// WriteEval buffers a record (or writes it immediately in single mode).
func (jw *JSONWriter) WriteEval(rec Record) error {
	if jw.single {
		return json.NewEncoder(jw.w).Encode(EvalToJSON(rec, jw.precision))
	}
	jw.records = append(jw.records, rec)
	return nil
}

// Flush writes all buffered records as a JSON array.
func (jw *JSONWriter) Flush() error {
	if jw.single || len(jw.records) == 0 {
		return nil
	}

	out := &JSONOutput{
		Evaluations: make([]*JSONEval, 0, len(jw.records)),
	}
	for _, rec := range jw.records {
		out.Evaluations = append(out.Evaluations, EvalToJSON(rec, jw.precision))
	}

	enc := json.NewEncoder(jw.w)
	enc.SetIndent("", "  ")
	err := enc.Encode(out)

	// Clear buffer after writing
	jw.records = jw.records[:0]

	return err
}

// Close flushes and closes the JSON writer.
func (jw *JSONWriter) Close() error {
	return jw.Flush()
}
