package querybuilder

// queryKind distinguishes the outer statement shape an AST will compile to.
type queryKind int

const (
	kindSelect queryKind = iota
	kindInsert
	kindUpdate
	kindUpsert
	kindDelete
)

// connective is the AND/OR a predicate node joins to the ones that came
// before it in its own scope.
type connective int

const (
	connAnd connective = iota
	connOr
)

func (c connective) String() string {
	if c == connOr {
		return "OR"
	}
	return "AND"
}

type assignment struct {
	column string
	value  any
}

type joinSpec struct {
	table string
	on    string
	kind  string // INNER / LEFT / RIGHT
}

type orderSpec struct {
	column string
	dir    string
}

type relationSpec struct {
	hasMany      bool
	relatedTable string
	name         string
	foreignKey   []string
	localKey     []string
	filter       func(*Builder)
}

type aggregateSpec struct {
	fn           string // SUM / COUNT / AVG / MAX / MIN / CUSTOM
	relatedTable string
	foreignKey   []string
	localKey     []string
	expr         string
	alias        string
	filter       func(*Builder)
}

// query is the mutable AST a Builder accumulates. It is never exposed
// directly; callers only ever see it through Builder's fluent methods and
// terminal operations.
type query struct {
	kind  queryKind
	table string

	projection []string // nil/empty means "SELECT *"
	distinct   bool

	joins []joinSpec

	where   []node
	groupBy []string
	having  []node
	orderBy []orderSpec

	limit  *int
	offset *int

	insertColumns []string
	insertRows    [][]any
	updateSet     []assignment
	upsertUpdate  []assignment

	relations  []relationSpec
	aggregates []aggregateSpec

	// autoAddedColumns records columns the projection expander added on
	// behalf of a relation's local key so the post-processor can strip
	// them back out of the rows handed to the caller.
	autoAddedColumns []string
}

func freshQuery(table string) *query {
	return &query{kind: kindSelect, table: table}
}

func (q *query) clone() *query {
	cp := *q
	cp.projection = append([]string{}, q.projection...)
	cp.joins = append([]joinSpec{}, q.joins...)
	cp.where = append([]node{}, q.where...)
	cp.groupBy = append([]string{}, q.groupBy...)
	cp.having = append([]node{}, q.having...)
	cp.orderBy = append([]orderSpec{}, q.orderBy...)
	if q.limit != nil {
		l := *q.limit
		cp.limit = &l
	}
	if q.offset != nil {
		o := *q.offset
		cp.offset = &o
	}
	cp.insertColumns = append([]string{}, q.insertColumns...)
	cp.insertRows = append([][]any{}, q.insertRows...)
	cp.updateSet = append([]assignment{}, q.updateSet...)
	cp.upsertUpdate = append([]assignment{}, q.upsertUpdate...)
	cp.relations = append([]relationSpec{}, q.relations...)
	cp.aggregates = append([]aggregateSpec{}, q.aggregates...)
	cp.autoAddedColumns = append([]string{}, q.autoAddedColumns...)
	return &cp
}

func intPtr(n int) *int { return &n }
