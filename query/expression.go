package query

// Expression wraps a fragment of SQL that must be emitted into the compiled
// statement verbatim. Grammars never quote it and the builder never binds it;
// the caller vouches for its safety.
type Expression struct {
	value string
}

// Raw marks sql as a trusted expression.
func Raw(sql string) Expression {
	return Expression{value: sql}
}

// Value returns the raw SQL fragment.
func (e Expression) Value() string {
	return e.value
}

func (e Expression) String() string {
	return e.value
}

// IsExpression reports whether value is a raw expression.
func IsExpression(value any) bool {
	_, ok := value.(Expression)
	return ok
}
