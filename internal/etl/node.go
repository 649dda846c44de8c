package etl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

// ── Node ───────────────────────────────────────────────────
// One decoded JSON document as a closed set of variants:
// Object (ordered members), Array (ordered items) or Leaf (a Scalar).

// NodeKind discriminates the Node variants.
type NodeKind uint8

const (
	NodeLeaf NodeKind = iota
	NodeObject
	NodeArray
)

// Member is one object field. Members keep document order.
type Member struct {
	Name  string
	Value Node
}

// Node is a JSON value. The zero value is a null leaf.
type Node struct {
	kind    NodeKind
	members []Member
	items   []Node
	leaf    Scalar
}

func Object(members ...Member) Node { return Node{kind: NodeObject, members: members} }
func Array(items ...Node) Node { return Node{kind: NodeArray, items: items} }
func Leaf(v Scalar) Node { return Node{kind: NodeLeaf, leaf: v} }

func (n Node) Kind() NodeKind { return n.kind }
func (n Node) Members() []Member { return n.members }
func (n Node) Items() []Node { return n.items }
func (n Node) LeafValue() Scalar { return n.leaf }

// ParseDocument decodes a single JSON text into a Node.
// Object members keep the order they appear in; a repeated member name
// keeps its first position and its last value.
func ParseDocument(data []byte) (Node, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		var probe any
		if err := json.Unmarshal(data, &probe); err != nil {
			return Node{}, err
		}
		return Node{}, fmt.Errorf("invalid json")
	}

	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return Node{}, fmt.Errorf("decode: %w", err)
	}
	return decodeValue(value, dataType)
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (Node, error) {
	switch dataType {
	case jsonparser.Object:
		return decodeObject(value)
	case jsonparser.Array:
		return decodeArray(value)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return Node{}, fmt.Errorf("parse string: %w", err)
		}
		return Leaf(Str(s)), nil
	case jsonparser.Number:
		n, err := parseNumber(value)
		if err != nil {
			return Node{}, err
		}
		return Leaf(n), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return Node{}, fmt.Errorf("parse bool: %w", err)
		}
		return Leaf(Bool(b)), nil
	case jsonparser.Null:
		return Leaf(Null()), nil
	default:
		return Node{}, fmt.Errorf("unsupported json value %q", value)
	}
}

func decodeObject(value []byte) (Node, error) {
	var members []Member
	seen := make(map[string]int)

	// ObjectEach hands keys over already unescaped.
	err := jsonparser.ObjectEach(value, func(key, val []byte, vt jsonparser.ValueType, _ int) error {
		name := string(key)
		child, err := decodeValue(val, vt)
		if err != nil {
			return err
		}
		if i, ok := seen[name]; ok {
			members[i].Value = child
			return nil
		}
		seen[name] = len(members)
		members = append(members, Member{Name: name, Value: child})
		return nil
	})
	if err != nil {
		return Node{}, err
	}
	return Object(members...), nil
}

func decodeArray(value []byte) (Node, error) {
	var (
		items []Node
		inner error
	)
	_, err := jsonparser.ArrayEach(value, func(val []byte, vt jsonparser.ValueType, _ int, err error) {
		if inner != nil {
			return
		}
		if err != nil {
			inner = err
			return
		}
		child, err := decodeValue(val, vt)
		if err != nil {
			inner = err
			return
		}
		items = append(items, child)
	})
	if inner != nil {
		return Node{}, inner
	}
	if err != nil {
		return Node{}, fmt.Errorf("parse array: %w", err)
	}
	return Array(items...), nil
}

// parseNumber keeps the int/float distinction of the literal.
// Integers outside the int64 range fall back to float, and floats outside
// the float64 range become ±Inf.
func parseNumber(raw []byte) (Scalar, error) {
	if !bytes.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Scalar{}, fmt.Errorf("parse number %q: %w", raw, err)
	}
	return Float(f), nil
}
