package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

type kind int

const (
	kindScalar kind = iota
	kindObject
	kindArray
)

// node is a decoded JSON value that remembers object key order.
type node struct {
	kind   kind
	keys   []string
	fields map[string]*node
	items  []*node
	value  any
}

func decodeOrdered(data []byte) (*node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := parseNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected trailing data after JSON value")
	}

	return n, nil
}

func parseNode(dec *json.Decoder) (*node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return &node{kind: kindScalar, value: tok}, nil
	}

	switch delim {
	case '{':
		n := &node{kind: kindObject, fields: map[string]*node{}}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.Errorf("invalid object key %v", keyTok)
			}
			child, err := parseNode(dec)
			if err != nil {
				return nil, err
			}
			if _, dup := n.fields[key]; !dup {
				n.keys = append(n.keys, key)
			}
			n.fields[key] = child
		}
		_, err = dec.Token()
		return n, err
	case '[':
		n := &node{kind: kindArray}
		for dec.More() {
			child, err := parseNode(dec)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, child)
		}
		_, err = dec.Token()
		return n, err
	}

	return nil, errors.Errorf("unexpected delimiter %v", delim)
}

func (n *node) field(key string) *node {
	if n == nil || n.kind != kindObject {
		return nil
	}

	return n.fields[key]
}

func (n *node) str() (string, bool) {
	if n == nil || n.kind != kindScalar {
		return "", false
	}
	s, ok := n.value.(string)

	return s, ok
}

// strings returns the string form of a scalar or of every string in an array.
func (n *node) strings() []string {
	if s, ok := n.str(); ok {
		return []string{s}
	}
	if n == nil || n.kind != kindArray {
		return nil
	}

	out := make([]string, 0, len(n.items))
	for _, item := range n.items {
		if s, ok := item.str(); ok {
			out = append(out, s)
		}
	}

	return out
}

// KeyOrder maps an instance path to the document order of that object's keys.
type KeyOrder map[string][]string

// OrderOf records the key order of every object in raw, with paths rooted at
// prefix (e.g. "/body"). Invalid JSON yields an empty order.
func OrderOf(raw []byte, prefix string) KeyOrder {
	order := KeyOrder{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return order
	}

	root, err := decodeOrdered(raw)
	if err != nil {
		return order
	}
	order.collect(root, prefix)

	return order
}

func (o KeyOrder) collect(n *node, path string) {
	switch n.kind {
	case kindObject:
		o[path] = append([]string(nil), n.keys...)
		for _, k := range n.keys {
			o.collect(n.fields[k], path+"/"+k)
		}
	case kindArray:
		for i, item := range n.items {
			o.collect(item, fmt.Sprintf("%s/%d", path, i))
		}
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}

	return -1
}
