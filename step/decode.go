// Package step decodes STEP physical files (ISO 10303-21), the exchange
// format IFC building models are shipped in.
//
// The package covers the subset of the standard IFC files use: a header
// section carrying FILE_DESCRIPTION, FILE_NAME and FILE_SCHEMA records, and
// a data section of numbered, typed instances. Decoding produces a read-only
// File model with lookup indices by instance id, by type name, and by
// reverse reference. Interpreting the instances against an IFC schema is the
// caller's concern.
package step

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotExchangeFile is returned when the ISO-10303-21 marker is missing.
	ErrNotExchangeFile = errors.New("not an ISO-10303-21 exchange file")
	// ErrDuplicateID is returned when two instances share a numeric id.
	ErrDuplicateID = errors.New("duplicate instance id")
)

// SyntaxError reports a malformed construct and its byte offset in the
// source.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Decode parses a STEP physical file from memory and returns the read-only
// model.
func Decode(src []byte) (*File, error) {
	d := &decoder{scan: scanner{src: src}}
	return d.decode()
}

// DecodeFile reads and decodes a STEP physical file from disk.
func DecodeFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return f, nil
}

type decoder struct {
	scan scanner
	tok  token
}

func (d *decoder) next() error {
	tok, err := d.scan.next()
	if err != nil {
		return err
	}
	d.tok = tok
	return nil
}

func (d *decoder) expect(kind tokenKind) error {
	if d.tok.kind != kind {
		return d.scan.errorf(d.tok.pos, "expected %s, got %s", kind, d.tok.kind)
	}
	return d.next()
}

func (d *decoder) expectKeyword(word string) error {
	if d.tok.kind != tokIdent || d.tok.text != word {
		return d.scan.errorf(d.tok.pos, "expected %q", word)
	}
	return d.next()
}

func (d *decoder) decode() (*File, error) {
	if err := d.next(); err != nil {
		return nil, err
	}
	if d.tok.kind != tokIdent || d.tok.text != "ISO-10303-21" {
		return nil, ErrNotExchangeFile
	}
	if err := d.next(); err != nil {
		return nil, err
	}
	if err := d.expect(tokSemicolon); err != nil {
		return nil, err
	}

	f := &File{instances: make(map[int64]*Instance)}

	if err := d.decodeHeader(f); err != nil {
		return nil, err
	}
	if err := d.decodeData(f); err != nil {
		return nil, err
	}

	if err := d.expectKeyword("END-ISO-10303-21"); err != nil {
		return nil, err
	}

	f.buildIndices()
	return f, nil
}

// decodeHeader parses the HEADER section and maps the well-known records
// onto the Header struct. Unknown records are tolerated and skipped.
func (d *decoder) decodeHeader(f *File) error {
	if err := d.expectKeyword("HEADER"); err != nil {
		return err
	}
	if err := d.expect(tokSemicolon); err != nil {
		return err
	}

	for {
		if d.tok.kind == tokIdent && d.tok.text == "ENDSEC" {
			break
		}
		if d.tok.kind != tokIdent {
			return d.scan.errorf(d.tok.pos, "expected header record, got %s", d.tok.kind)
		}
		name := d.tok.text
		if err := d.next(); err != nil {
			return err
		}
		args, err := d.decodeArgs()
		if err != nil {
			return err
		}
		if err := d.expect(tokSemicolon); err != nil {
			return err
		}
		f.Header.apply(name, args)
	}

	if err := d.next(); err != nil { // ENDSEC
		return err
	}
	return d.expect(tokSemicolon)
}

func (d *decoder) decodeData(f *File) error {
	if err := d.expectKeyword("DATA"); err != nil {
		return err
	}
	if err := d.expect(tokSemicolon); err != nil {
		return err
	}

	for {
		if d.tok.kind == tokIdent && d.tok.text == "ENDSEC" {
			break
		}
		if d.tok.kind != tokRef {
			return d.scan.errorf(d.tok.pos, "expected instance id, got %s", d.tok.kind)
		}
		id := d.tok.num
		pos := d.tok.pos
		if err := d.next(); err != nil {
			return err
		}
		if err := d.expect(tokEqual); err != nil {
			return err
		}
		if d.tok.kind != tokIdent {
			return d.scan.errorf(d.tok.pos, "expected type name, got %s", d.tok.kind)
		}
		typeName := d.tok.text
		if err := d.next(); err != nil {
			return err
		}
		args, err := d.decodeArgs()
		if err != nil {
			return err
		}
		if err := d.expect(tokSemicolon); err != nil {
			return err
		}

		if _, dup := f.instances[id]; dup {
			return fmt.Errorf("%w: #%d (offset %d)", ErrDuplicateID, id, pos)
		}
		f.instances[id] = &Instance{ID: id, Type: typeName, Args: args}
	}

	if err := d.next(); err != nil { // ENDSEC
		return err
	}
	return d.expect(tokSemicolon)
}

// decodeArgs parses a parenthesized argument list.
func (d *decoder) decodeArgs() ([]Value, error) {
	if err := d.expect(tokLParen); err != nil {
		return nil, err
	}
	if d.tok.kind == tokRParen {
		return nil, d.next()
	}

	var args []Value
	for {
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		switch d.tok.kind {
		case tokComma:
			if err := d.next(); err != nil {
				return nil, err
			}
		case tokRParen:
			return args, d.next()
		default:
			return nil, d.scan.errorf(d.tok.pos, "expected ',' or ')', got %s", d.tok.kind)
		}
	}
}

func (d *decoder) decodeValue() (Value, error) {
	switch d.tok.kind {
	case tokDollar:
		return Value{Kind: KindNull}, d.next()
	case tokStar:
		return Value{Kind: KindDerived}, d.next()
	case tokInt:
		v := Value{Kind: KindInt, Int: d.tok.num}
		return v, d.next()
	case tokReal:
		v := Value{Kind: KindReal, Real: d.tok.real}
		return v, d.next()
	case tokString:
		v := Value{Kind: KindString, Str: d.tok.text}
		return v, d.next()
	case tokEnum:
		v := Value{Kind: KindEnum, Str: d.tok.text}
		return v, d.next()
	case tokRef:
		v := Value{Kind: KindRef, Ref: d.tok.num}
		return v, d.next()
	case tokLParen:
		list, err := d.decodeArgs()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindList, List: list}, nil
	case tokIdent:
		// Typed value: TYPENAME(inner)
		typeName := d.tok.text
		if err := d.next(); err != nil {
			return Value{}, err
		}
		inner, err := d.decodeArgs()
		if err != nil {
			return Value{}, err
		}
		if len(inner) != 1 {
			return Value{}, d.scan.errorf(d.tok.pos,
				"typed value %s must carry exactly one value, got %d", typeName, len(inner))
		}
		return Value{Kind: KindTyped, TypeName: typeName, Inner: &inner[0]}, nil
	default:
		return Value{}, d.scan.errorf(d.tok.pos, "unexpected %s in argument list", d.tok.kind)
	}
}
