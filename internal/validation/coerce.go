package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const maxRefDepth = 32

// walker visits a document alongside its schema. It coerces scalars in place
// and records every `errorMessage` it passes.
type walker struct {
	root     *node
	coerce   bool
	messages []errorMessage
}

type errorMessage struct {
	path string
	rule *node
}

func (w *walker) walk(sn *node, v any, path string) any {
	sn = w.resolve(sn)
	if sn == nil || sn.kind != kindObject {
		return v
	}

	if w.coerce {
		v = coerceScalar(sn.field("type").strings(), v)
	}
	if msg := sn.field("errorMessage"); msg != nil {
		w.messages = append(w.messages, errorMessage{path: path, rule: msg})
	}

	switch val := v.(type) {
	case map[string]any:
		props := sn.field("properties")
		extra := sn.field("additionalProperties")
		for k, child := range val {
			if ps := props.field(k); ps != nil {
				val[k] = w.walk(ps, child, path+"/"+k)
			} else if extra != nil && extra.kind == kindObject {
				val[k] = w.walk(extra, child, path+"/"+k)
			}
		}
	case []any:
		items := sn.field("items")
		for i, child := range val {
			itemPath := path + "/" + strconv.Itoa(i)
			switch {
			case items == nil:
			case items.kind == kindArray && i < len(items.items):
				val[i] = w.walk(items.items[i], child, itemPath)
			case items.kind == kindObject:
				val[i] = w.walk(items, child, itemPath)
			}
		}
	}

	if all := sn.field("allOf"); all != nil && all.kind == kindArray {
		for _, sub := range all.items {
			v = w.walk(sub, v, path)
		}
	}

	return v
}

// resolve follows local "$ref" pointers ("#/definitions/x", "#/$defs/x").
func (w *walker) resolve(sn *node) *node {
	for i := 0; i < maxRefDepth; i++ {
		ref, ok := sn.field("$ref").str()
		if !ok || !strings.HasPrefix(ref, "#") {
			return sn
		}

		target := w.root
		for _, seg := range strings.Split(strings.TrimPrefix(ref, "#"), "/") {
			if seg == "" {
				continue
			}
			seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
			target = target.field(seg)
		}
		if target == nil {
			return sn
		}
		sn = target
	}

	return sn
}

// coerceScalar converts v to the first listed type it can represent when it does
// not already match one of them. Rules follow ajv's coerceTypes option.
func coerceScalar(types []string, v any) any {
	if len(types) == 0 || matchesAny(types, v) {
		return v
	}

	for _, t := range types {
		if out, ok := coerceTo(t, v); ok {
			return out
		}
	}

	return v
}

func matchesAny(types []string, v any) bool {
	for _, t := range types {
		if matches(t, v) {
			return true
		}
	}

	return false
}

func matches(t string, v any) bool {
	switch t {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		_, ok := asFloat(v)
		return ok
	case "integer":
		f, ok := asFloat(v)
		return ok && f == math.Trunc(f)
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "null":
		return v == nil
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	}

	return false
}

func coerceTo(t string, v any) (any, bool) {
	switch t {
	case "string":
		switch val := v.(type) {
		case nil:
			return "", true
		case bool:
			return strconv.FormatBool(val), true
		default:
			if f, ok := asFloat(v); ok {
				return strconv.FormatFloat(f, 'f', -1, 64), true
			}
		}
	case "number", "integer":
		var f float64
		switch val := v.(type) {
		case nil:
			f = 0
		case bool:
			if val {
				f = 1
			}
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil || strings.TrimSpace(val) == "" || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
				return nil, false
			}
			f = parsed
		default:
			return nil, false
		}
		if t == "integer" && f != math.Trunc(f) {
			return nil, false
		}
		return f, true
	case "boolean":
		switch val := v.(type) {
		case nil:
			return false, true
		case string:
			if val == "true" || val == "false" {
				return val == "true", true
			}
		default:
			if f, ok := asFloat(v); ok && (f == 0 || f == 1) {
				return f == 1, true
			}
		}
	case "null":
		switch val := v.(type) {
		case string:
			if val == "" {
				return nil, true
			}
		case bool:
			if !val {
				return nil, true
			}
		default:
			if f, ok := asFloat(v); ok && f == 0 {
				return nil, true
			}
		}
	}

	return nil, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}

	return 0, false
}
