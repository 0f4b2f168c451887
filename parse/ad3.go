// Package parse reads and writes AD3: newline-delimited JSON arrays, each
// holding one [subject, property, value] triple of strings.
package parse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/errors"
)

// MediaType is the content type of AD3 documents.
const MediaType = "application/ad3-ndjson"

// maxLineSize bounds a single AD3 line; markdown values can be long.
const maxLineSize = 4 * 1024 * 1024

// ParseAD3 parses an AD3 document into atoms. Blank lines are skipped.
// Errors are marked with errors.ErrInvalidRequest and name the failing line.
func ParseAD3(doc string) ([]atomic.Atom, error) {
	return ParseAD3Reader(strings.NewReader(doc))
}

// ParseAD3Reader parses AD3 from r.
func ParseAD3Reader(r io.Reader) ([]atomic.Atom, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var atoms []atomic.Atom
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		atom, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		atoms = append(atoms, atom)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read AD3")
	}
	return atoms, nil
}

func parseLine(line []byte) (atomic.Atom, error) {
	var parts []string
	if err := json.Unmarshal(line, &parts); err != nil {
		return atomic.Atom{}, errors.NewInvalidRequestError("not a JSON array of strings: %s", err.Error())
	}
	if len(parts) != 3 {
		return atomic.Atom{}, errors.NewInvalidRequestError("expected 3 elements, got %d", len(parts))
	}
	if parts[0] == "" || parts[1] == "" {
		return atomic.Atom{}, errors.NewInvalidRequestError("subject and property must not be empty")
	}
	return atomic.NewAtom(parts[0], parts[1], parts[2]), nil
}

// SerializeAD3 renders atoms as an AD3 document, one line per atom.
func SerializeAD3(atoms []atomic.Atom) (string, error) {
	var buf bytes.Buffer
	if err := WriteAD3(&buf, atoms); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteAD3 writes atoms to w as AD3.
func WriteAD3(w io.Writer, atoms []atomic.Atom) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, a := range atoms {
		// Encode appends the newline that terminates each AD3 line
		if err := enc.Encode([3]string{a.Subject, a.Property, a.Value}); err != nil {
			return errors.Wrapf(err, "encode atom %s", a)
		}
	}
	return nil
}
