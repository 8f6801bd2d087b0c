package validation

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema.
type Schema struct {
	compiled *gojsonschema.Schema
	root     *node
	coerce   bool
}

// Option configures Compile.
type Option func(*Schema)

// WithoutCoercion disables scalar type coercion. Coercion is on by default.
func WithoutCoercion() Option {
	return func(s *Schema) {
		s.coerce = false
	}
}

// Compile parses and compiles a draft-07 (or $schema-declared) JSON schema.
func Compile(raw []byte, opts ...Option) (*Schema, error) {
	root, err := decodeOrdered(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse schema")
	}

	loader := gojsonschema.NewSchemaLoader()
	loader.Draft = gojsonschema.Draft7
	loader.AutoDetect = true
	loader.Validate = true

	compiled, err := loader.Compile(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile schema")
	}

	s := &Schema{compiled: compiled, root: root, coerce: true}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// MustCompile is Compile for package-level schemas; it panics on error.
func MustCompile(raw []byte, opts ...Option) *Schema {
	s, err := Compile(raw, opts...)
	if err != nil {
		panic(err)
	}

	return s
}

// Validate checks doc against the schema.
//
// doc is first converted to its generic JSON form and coerced; the coerced
// document is returned whether or not validation passes. Causes are ordered the
// way ajv reports them: parent-level failures before their children, object
// members in schema order, unknown members in document order (from order).
func (s *Schema) Validate(doc any, order KeyOrder) (any, []Cause, error) {
	generic, err := toGeneric(doc)
	if err != nil {
		return nil, nil, err
	}

	w := &walker{root: s.root, coerce: s.coerce}
	generic = w.walk(s.root, generic, "")

	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(generic))
	if err != nil {
		return generic, nil, errors.Wrap(err, "schema engine failed")
	}
	if result.Valid() {
		return generic, nil, nil
	}

	causes := make([]Cause, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		causes = append(causes, convert(re))
	}
	s.sort(causes, order)

	return generic, applyErrorMessages(causes, w.messages), nil
}

func toGeneric(doc any) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "document is not JSON-serializable")
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, errors.Wrap(err, "document is not JSON-serializable")
	}

	return generic, nil
}

// convert reshapes a gojsonschema failure into an ajv-style cause.
func convert(re gojsonschema.ResultError) Cause {
	d := re.Details()
	c := Cause{
		InstancePath: instancePath(re.Context()),
		Params:       map[string]any{},
	}

	switch re.Type() {
	case "required":
		prop := fmt.Sprint(d["property"])
		c.Keyword = "required"
		c.Params["missingProperty"] = prop
		c.Message = fmt.Sprintf("must have required property '%s'", prop)
	case "invalid_type":
		expected := strings.Trim(fmt.Sprint(d["expected"]), "[]")
		c.Keyword = "type"
		c.Params["type"] = expected
		c.Message = "must be " + expected
	case "string_gte":
		limit := toInt(d["min"])
		c.Keyword = "minLength"
		c.Params["limit"] = limit
		c.Message = fmt.Sprintf("must NOT have fewer than %d characters", limit)
	case "string_lte":
		limit := toInt(d["max"])
		c.Keyword = "maxLength"
		c.Params["limit"] = limit
		c.Message = fmt.Sprintf("must NOT have more than %d characters", limit)
	case "array_min_items":
		limit := toInt(d["min"])
		c.Keyword = "minItems"
		c.Params["limit"] = limit
		c.Message = fmt.Sprintf("must NOT have fewer than %d items", limit)
	case "array_max_items":
		limit := toInt(d["max"])
		c.Keyword = "maxItems"
		c.Params["limit"] = limit
		c.Message = fmt.Sprintf("must NOT have more than %d items", limit)
	case "number_gte":
		c.Keyword, c.Message = "minimum", limitMessage(c.Params, ">=", d["min"])
	case "number_gt":
		c.Keyword, c.Message = "exclusiveMinimum", limitMessage(c.Params, ">", d["min"])
	case "number_lte":
		c.Keyword, c.Message = "maximum", limitMessage(c.Params, "<=", d["max"])
	case "number_lt":
		c.Keyword, c.Message = "exclusiveMaximum", limitMessage(c.Params, "<", d["max"])
	case "format":
		format := fmt.Sprint(d["format"])
		c.Keyword = "format"
		c.Params["format"] = format
		c.Message = fmt.Sprintf("must match format \"%s\"", format)
	case "additional_property_not_allowed":
		c.Keyword = "additionalProperties"
		c.Params["additionalProperty"] = fmt.Sprint(d["property"])
		c.Message = "must NOT have additional properties"
	case "enum":
		c.Keyword = "enum"
		c.Params["allowedValues"] = splitAllowed(fmt.Sprint(d["allowed"]))
		c.Message = "must be equal to one of the allowed values"
	case "pattern":
		pattern := fmt.Sprint(d["pattern"])
		c.Keyword = "pattern"
		c.Params["pattern"] = pattern
		c.Message = fmt.Sprintf("must match pattern \"%s\"", pattern)
	case "const":
		c.Keyword = "const"
		c.Message = "must be equal to constant"
	case "unique":
		c.Keyword = "uniqueItems"
		c.Message = "must NOT have duplicate items"
	default:
		c.Keyword = re.Type()
		c.Message = re.Description()
	}

	return c
}

func instancePath(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return ""
	}

	return strings.TrimPrefix(ctx.String("/"), gojsonschema.STRING_CONTEXT_ROOT)
}

func limitMessage(params map[string]any, comparison string, limit any) string {
	n := toNumber(limit)
	params["comparison"] = comparison
	params["limit"] = n

	return fmt.Sprintf("must be %s %s", comparison, strconv.FormatFloat(n, 'f', -1, 64))
}

func splitAllowed(allowed string) []string {
	parts := strings.Split(allowed, ", ")
	for i, p := range parts {
		var s string
		if err := json.Unmarshal([]byte(p), &s); err == nil {
			parts[i] = s
		}
	}

	return parts
}

func toNumber(v any) float64 {
	switch n := v.(type) {
	case *big.Rat:
		f, _ := n.Float64()
		return f
	case *big.Float:
		f, _ := n.Float64()
		return f
	case *int:
		if n != nil {
			return float64(*n)
		}
	case *float64:
		if n != nil {
			return *n
		}
	}
	if f, ok := asFloat(v); ok {
		return f
	}

	f, _ := strconv.ParseFloat(fmt.Sprint(v), 64)

	return f
}

func toInt(v any) int {
	return int(toNumber(v))
}

// applyErrorMessages replaces the causes covered by an `errorMessage` keyword.
//
// A string errorMessage swallows every cause at or below its instance path.
// An object errorMessage maps keywords to messages and only swallows causes
// with those keywords at exactly its path. Inner messages apply first.
func applyErrorMessages(causes []Cause, msgs []errorMessage) []Cause {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if text, ok := m.rule.str(); ok {
			causes = replaceCauses(causes, text, m.path, func(c Cause) bool {
				return c.InstancePath == m.path || strings.HasPrefix(c.InstancePath, m.path+"/")
			})
			continue
		}
		for _, keyword := range m.rule.keys {
			text, ok := m.rule.fields[keyword].str()
			if !ok {
				continue
			}
			causes = replaceCauses(causes, text, m.path, func(c Cause) bool {
				return c.InstancePath == m.path && c.Keyword == keyword
			})
		}
	}

	return causes
}

func replaceCauses(causes []Cause, text, path string, match func(Cause) bool) []Cause {
	out := make([]Cause, 0, len(causes))
	var swallowed []Cause
	at := -1

	for _, c := range causes {
		if c.Keyword != "errorMessage" && match(c) {
			if at < 0 {
				at = len(out)
				out = append(out, Cause{})
			}
			swallowed = append(swallowed, c)
			continue
		}
		out = append(out, c)
	}
	if at < 0 {
		return causes
	}

	out[at] = Cause{
		Keyword:      "errorMessage",
		InstancePath: path,
		Params:       map[string]any{"errors": swallowed},
		Message:      text,
	}

	return out
}
