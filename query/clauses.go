package query

// WhereKind tags a Where variant. Compilation dispatches on the tag; every
// variant uses a fixed subset of the Where fields.
type WhereKind string

const (
	WhereRaw          WhereKind = "raw"
	WhereBasic        WhereKind = "basic"
	WhereIn           WhereKind = "in"
	WhereNotIn        WhereKind = "notIn"
	WhereInRaw        WhereKind = "inRaw"
	WhereNotInRaw     WhereKind = "notInRaw"
	WhereNull         WhereKind = "null"
	WhereNotNull      WhereKind = "notNull"
	WhereBetween      WhereKind = "between"
	WhereDateBased    WhereKind = "dateBased"
	WhereColumn       WhereKind = "column"
	WhereNested       WhereKind = "nested"
	WhereSub          WhereKind = "sub"
	WhereExists       WhereKind = "exists"
	WhereNotExists    WhereKind = "notExists"
	WhereRowValues    WhereKind = "rowValues"
	WhereJSONContains WhereKind = "jsonContains"
	WhereJSONLength   WhereKind = "jsonLength"
)

// Date parts accepted by dateBased wheres.
const (
	DatePartDate  = "date"
	DatePartTime  = "time"
	DatePartDay   = "day"
	DatePartMonth = "month"
	DatePartYear  = "year"
)

// Where is one predicate of a where (or join "on") tree.
type Where struct {
	Kind     WhereKind
	Column   any      // string or Expression
	Columns  []string // rowValues
	First    any      // column comparison: left side
	Second   any      // column comparison: right side
	Operator string
	Value    any
	Values   []any  // in, between, rowValues
	IntList  []int  // inRaw, notInRaw: trusted integers, inlined verbatim
	Part     string // dateBased: date, time, day, month or year
	SQL      string // raw
	Query    *Builder
	Not      bool   // negates between and jsonContains
	Boolean  string // "and" or "or"
}

// HavingKind tags a Having variant.
type HavingKind string

const (
	HavingBasic   HavingKind = "basic"
	HavingRaw     HavingKind = "raw"
	HavingBetween HavingKind = "between"
)

// Having is one predicate of the having tree. Having predicates reuse the
// where conjunction rules but compile through their own dispatch table.
type Having struct {
	Kind     HavingKind
	Column   any
	Operator string
	Value    any
	Values   []any
	SQL      string
	Not      bool
	Boolean  string
}

// Order is a single ordering term; SQL set means a raw ordering.
type Order struct {
	Column    any
	Direction string
	SQL       string
}

// Union attaches another full select to the builder.
type Union struct {
	Query *Builder
	All   bool
}

// Aggregate replaces the column list with an aggregate projection.
type Aggregate struct {
	Function string
	Columns  []any
}

// Lock requests a row-locking clause. SQL set means a raw lock fragment;
// otherwise ForUpdate selects between the dialect's exclusive and shared
// forms.
type Lock struct {
	SQL       string
	ForUpdate bool
}

const (
	boolAnd = "and"
	boolOr  = "or"
)
