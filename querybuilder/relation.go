package querybuilder

import "github.com/denisvmedia/sqlbuilder/internal/identifier"

// WithMany registers a hasMany eager-load relation against relatedTable,
// matched on relatedTable.foreignKey = table.localKey, exposed on the
// result rows under a field named relatedTable (unless overridden by
// WithManyAs). cb, if given, filters/shapes the relation's own query.
func (b *Builder) WithMany(relatedTable, foreignKey, localKey string, cb ...func(*Builder)) *Builder {
	return b.withRelation(true, relatedTable, []string{foreignKey}, []string{localKey}, "", firstCB(cb))
}

// WithManyAs is WithMany with an explicit relation name.
func (b *Builder) WithManyAs(relatedTable, foreignKey, localKey, name string, cb ...func(*Builder)) *Builder {
	return b.withRelation(true, relatedTable, []string{foreignKey}, []string{localKey}, name, firstCB(cb))
}

// WithManyKeys is WithMany for a composite foreign key.
func (b *Builder) WithManyKeys(relatedTable string, foreignKey, localKey []string, cb ...func(*Builder)) *Builder {
	return b.withRelation(true, relatedTable, foreignKey, localKey, "", firstCB(cb))
}

// WithManyKeysAs is WithManyKeys with an explicit relation name.
func (b *Builder) WithManyKeysAs(relatedTable string, foreignKey, localKey []string, name string, cb ...func(*Builder)) *Builder {
	return b.withRelation(true, relatedTable, foreignKey, localKey, name, firstCB(cb))
}

// WithOne registers a hasOne eager-load relation; otherwise identical to
// WithMany. Rows with more than one match take the first row returned by
// the relation's query.
func (b *Builder) WithOne(relatedTable, foreignKey, localKey string, cb ...func(*Builder)) *Builder {
	return b.withRelation(false, relatedTable, []string{foreignKey}, []string{localKey}, "", firstCB(cb))
}

// WithOneAs is WithOne with an explicit relation name.
func (b *Builder) WithOneAs(relatedTable, foreignKey, localKey, name string, cb ...func(*Builder)) *Builder {
	return b.withRelation(false, relatedTable, []string{foreignKey}, []string{localKey}, name, firstCB(cb))
}

// WithOneKeys is WithOne for a composite foreign key.
func (b *Builder) WithOneKeys(relatedTable string, foreignKey, localKey []string, cb ...func(*Builder)) *Builder {
	return b.withRelation(false, relatedTable, foreignKey, localKey, "", firstCB(cb))
}

// WithOneKeysAs is WithOneKeys with an explicit relation name.
func (b *Builder) WithOneKeysAs(relatedTable string, foreignKey, localKey []string, name string, cb ...func(*Builder)) *Builder {
	return b.withRelation(false, relatedTable, foreignKey, localKey, name, firstCB(cb))
}

func (b *Builder) withRelation(hasMany bool, relatedTable string, fk, lk []string, name string, cb func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(relatedTable, "RELATION"); err != nil {
		b.err = err
		return b
	}
	if len(fk) == 0 || len(fk) != len(lk) {
		b.err = ErrKeyLengthMismatch
		return b
	}
	if name == "" {
		name = relatedTable
	}
	if err := identifier.Validate(name, "RELATION NAME"); err != nil {
		b.err = err
		return b
	}
	b.q.relations = append(b.q.relations, relationSpec{
		hasMany:      hasMany,
		relatedTable: relatedTable,
		name:         name,
		foreignKey:   append([]string{}, fk...),
		localKey:     append([]string{}, lk...),
		filter:       cb,
	})
	return b
}
