package query

import "fmt"

// BindingGroup names one of the ordered slots a builder collects bindings
// into. Flattening always walks the groups in bindingGroupOrder so that the
// produced values line up with the placeholders of the compiled statement.
type BindingGroup string

const (
	BindingSelect     BindingGroup = "select"
	BindingFrom       BindingGroup = "from"
	BindingJoin       BindingGroup = "join"
	BindingWhere      BindingGroup = "where"
	BindingGroupBy    BindingGroup = "groupBy"
	BindingHaving     BindingGroup = "having"
	BindingOrder      BindingGroup = "order"
	BindingUnion      BindingGroup = "union"
	BindingUnionOrder BindingGroup = "unionOrder"
)

var bindingGroupOrder = []BindingGroup{
	BindingSelect,
	BindingFrom,
	BindingJoin,
	BindingWhere,
	BindingGroupBy,
	BindingHaving,
	BindingOrder,
	BindingUnion,
	BindingUnionOrder,
}

func newBindingMap() map[BindingGroup][]any {
	m := make(map[BindingGroup][]any, len(bindingGroupOrder))
	for _, group := range bindingGroupOrder {
		m[group] = nil
	}
	return m
}

func validBindingGroup(group BindingGroup) bool {
	for _, g := range bindingGroupOrder {
		if g == group {
			return true
		}
	}
	return false
}

// AddBinding appends values to the given group. An unknown group is recorded
// as a construction error and surfaced by ToSQL.
func (b *Builder) AddBinding(group BindingGroup, values ...any) *Builder {
	if !validBindingGroup(group) {
		b.recordErr(fmt.Errorf("%w: binding group %q", ErrInvalidArgument, group))
		return b
	}
	b.bindings[group] = append(b.bindings[group], cleanBindings(values)...)
	return b
}

// Bindings flattens every group in the fixed order select, from, join,
// where, groupBy, having, order, union, unionOrder.
func (b *Builder) Bindings() []any {
	var flat []any
	for _, group := range bindingGroupOrder {
		flat = append(flat, b.bindings[group]...)
	}
	return flat
}

// RawBindings exposes the grouped bindings without flattening.
func (b *Builder) RawBindings() map[BindingGroup][]any {
	return b.bindings
}

// BindingsForUpdate arranges bindings for an update statement: join bindings
// first, then the set values in their compiled column order, then every
// remaining group except select and join.
func (b *Builder) BindingsForUpdate(values []any) []any {
	flat := append([]any{}, b.bindings[BindingJoin]...)
	flat = append(flat, cleanBindings(values)...)
	for _, group := range bindingGroupOrder {
		if group == BindingSelect || group == BindingJoin {
			continue
		}
		flat = append(flat, b.bindings[group]...)
	}
	return flat
}

// BindingsForDelete flattens every group except select.
func (b *Builder) BindingsForDelete() []any {
	var flat []any
	for _, group := range bindingGroupOrder {
		if group == BindingSelect {
			continue
		}
		flat = append(flat, b.bindings[group]...)
	}
	return flat
}

// cleanBindings drops raw expressions; they are already part of the SQL text
// and must never occupy a placeholder slot.
func cleanBindings(values []any) []any {
	cleaned := make([]any, 0, len(values))
	for _, v := range values {
		if !IsExpression(v) {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}
