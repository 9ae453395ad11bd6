// Package trace reads memory traces and records what caches do with them.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/mem/cache"
)

// A MalformedEntryError reports a trace line that cannot be parsed.
type MalformedEntryError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("trace line %d %q: %s", e.Line, e.Text, e.Reason)
}

// A Reader reads accesses from a text trace. Each line holds an access kind,
// I for instruction or D for data, followed by a hexadecimal address:
//
//	I 4004a8
//	D 7ffc1a3c
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next access. It returns io.EOF when the trace ends.
func (r *Reader) Next() (cache.Access, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}

		return r.parse(text)
	}

	if err := r.scanner.Err(); err != nil {
		return cache.Access{}, fmt.Errorf("reading trace: %w", err)
	}

	return cache.Access{}, io.EOF
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// All returns the remaining accesses as a sequence. The sequence stops after
// the first error.
func (r *Reader) All() iter.Seq2[cache.Access, error] {
	return func(yield func(cache.Access, error) bool) {
		for {
			a, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(a, err) || err != nil {
				return
			}
		}
	}
}

func (r *Reader) parse(text string) (cache.Access, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return cache.Access{}, r.malformed(text,
			"expecting an access kind and an address")
	}

	var a cache.Access

	switch fields[0] {
	case "I":
		a.Kind = cache.Instruction
	case "D":
		a.Kind = cache.Data
	default:
		return cache.Access{}, r.malformed(text, "unknown access type")
	}

	hex := strings.TrimPrefix(strings.TrimPrefix(fields[1], "0x"), "0X")

	addr, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return cache.Access{}, r.malformed(text,
			"address is not a 32-bit hexadecimal number")
	}

	a.Address = uint32(addr)

	return a, nil
}

func (r *Reader) malformed(text, reason string) error {
	return &MalformedEntryError{
		Line:   r.line,
		Text:   text,
		Reason: reason,
	}
}
