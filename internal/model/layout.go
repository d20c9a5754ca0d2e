package model

import (
	"math"
	"strconv"
	"strings"
)

// Cell is one field placed on the 12-column editor grid.
type Cell struct {
	Field
	Span  int
	Start int
}

// Span returns the node's colSpan clamped to [1, 12]. Missing or malformed
// values take the full row.
func (n *Node) Span() int {
	if n == nil {
		return fullRow
	}
	span, ok := toIntValue(n.config[KeyColSpan])
	if !ok || span <= 0 || span > fullRow {
		return fullRow
	}
	return span
}

// Rows lays the fields of an object out on the grid in declaration order. A
// field that does not fit in what is left of the current row starts a new
// one. Non-object nodes yield nil.
func (n *Node) Rows() [][]Cell {
	if n == nil || n.kind != KindObject {
		return nil
	}
	var (
		rows [][]Cell
		row  []Cell
		used int
	)
	for _, field := range n.fields {
		span := field.Node.Span()
		if used+span > fullRow {
			rows = append(rows, row)
			row, used = nil, 0
		}
		row = append(row, Cell{Field: field, Span: span, Start: used + 1})
		used += span
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func toIntValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), true
		}
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
