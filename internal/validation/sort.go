package validation

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	rankUnknownMember = 1 << 20
	rankParentLevel   = -1
)

func keywordRank(keyword string) int {
	switch keyword {
	case "type":
		return 0
	case "required":
		return 1
	case "additionalProperties":
		return 2
	}

	return 3
}

type rankedCause struct {
	rank  []int
	cause Cause
}

// sort orders causes deterministically. gojsonschema walks object members in
// map order, so its raw output order is not stable between runs.
func (s *Schema) sort(causes []Cause, order KeyOrder) {
	ranked := make([]rankedCause, len(causes))
	for i, c := range causes {
		ranked[i] = rankedCause{rank: s.rank(c, order), cause: c}
	}

	slices.SortStableFunc(ranked, func(a, b rankedCause) int {
		if c := slices.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		if c := cmp.Compare(a.cause.InstancePath, b.cause.InstancePath); c != 0 {
			return c
		}

		return cmp.Compare(fmt.Sprint(a.cause.Params), fmt.Sprint(b.cause.Params))
	})

	for i := range ranked {
		causes[i] = ranked[i].cause
	}
}

func (s *Schema) rank(c Cause, order KeyOrder) []int {
	w := &walker{root: s.root}
	sn := w.resolve(s.root)
	path := ""

	var rank []int
	for _, seg := range splitPath(c.InstancePath) {
		rank = append(rank, memberRank(sn, seg, order[path]))
		sn = w.resolve(childSchema(sn, seg))
		path += "/" + seg
	}
	rank = append(rank, rankParentLevel, keywordRank(c.Keyword))

	switch c.Keyword {
	case "required":
		missing, _ := c.Params["missingProperty"].(string)
		rank = append(rank, positionOr(indexOf(sn.field("required").strings(), missing)))
	case "additionalProperties":
		extra, _ := c.Params["additionalProperty"].(string)
		rank = append(rank, positionOr(indexOf(order[path], extra)))
	}

	return rank
}

func memberRank(sn *node, seg string, docKeys []string) int {
	if i, err := strconv.Atoi(seg); err == nil {
		return i
	}
	if props := sn.field("properties"); props != nil {
		if i := indexOf(props.keys, seg); i >= 0 {
			return i
		}
	}

	return rankUnknownMember + positionOr(indexOf(docKeys, seg))
}

func childSchema(sn *node, seg string) *node {
	if _, err := strconv.Atoi(seg); err == nil {
		items := sn.field("items")
		if items != nil && items.kind == kindArray {
			i, _ := strconv.Atoi(seg)
			if i < len(items.items) {
				return items.items[i]
			}
			return nil
		}
		return items
	}
	if ps := sn.field("properties").field(seg); ps != nil {
		return ps
	}

	return sn.field("additionalProperties")
}

func positionOr(i int) int {
	if i < 0 {
		return rankUnknownMember
	}

	return i
}

func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}
