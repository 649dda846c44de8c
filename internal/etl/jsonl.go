package etl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"assetdash/internal/domain"
)

// ── JSON Lines ─────────────────────────────────────────────

// ReadDocuments yields every document of files in order, one per non-blank
// line. Each file is opened when reached and closed before the next one,
// also when the consumer stops early. A line that does not parse ends the
// sequence with *MalformedInputError.
func ReadDocuments(files []domain.FileRef) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		for _, f := range files {
			if !readFile(f.Path(), yield) {
				return
			}
		}
	}
}

// readFile reports whether the caller should move on to the next file.
func readFile(path string, yield func(Node, error) bool) bool {
	fh, err := os.Open(path)
	if err != nil {
		yield(Node{}, fmt.Errorf("open %s: %w", path, err))
		return false
	}
	defer fh.Close()

	for line, err := range ReadLines(fh) {
		if err != nil {
			yield(Node{}, fmt.Errorf("read %s: %w", path, err))
			return false
		}
		doc, err := ParseDocument(line.Data)
		if err != nil {
			yield(Node{}, &MalformedInputError{File: path, Line: line.Number, Err: err})
			return false
		}
		if !yield(doc, nil) {
			return false
		}
	}
	return true
}

// Line is one non-blank line of a JSON Lines stream. Number is 1-based.
type Line struct {
	Number int
	Data   []byte
}

// ReadLines yields the non-blank lines of r without a length limit.
func ReadLines(r io.Reader) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		br := bufio.NewReader(r)
		for n := 1; ; n++ {
			data, err := br.ReadBytes('\n')
			if len(bytes.TrimSpace(data)) > 0 {
				if !yield(Line{Number: n, Data: data}, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Line{}, err)
				return
			}
		}
	}
}
