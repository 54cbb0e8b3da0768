package t2b

import (
	"strconv"
	"strings"
)

// ItemName is the entry name of file records in a cpk_list table.
const ItemName = "CPK_ITEM"

// Field positions within a CPK_ITEM record, counted from the first value
// after the two path strings.
const (
	legacySourceIndex  = 2
	currentSourceIndex = 4
	destIndex          = 4
)

// Schema identifies the field-layout convention of a patched-table record,
// i.e. which field carries the authoritative file size.
type Schema int

const (
	// SchemaNone marks records that match no known layout; they are carried
	// through on write but never used as a patch source.
	SchemaNone Schema = iota
	// SchemaLegacy is the first-generation patch layout: the second path
	// string is empty and the size lives at field index 2.
	SchemaLegacy
	// SchemaCurrent is the later patch layout: the first two fields after
	// the path strings are empty and the size lives at field index 4.
	SchemaCurrent
)

func (s Schema) String() string {
	switch s {
	case SchemaLegacy:
		return "legacy"
	case SchemaCurrent:
		return "current"
	default:
		return "none"
	}
}

// Selector controls how Parse assigns a Schema to each CPK_ITEM record.
type Selector string

const (
	// SelectAuto detects the schema per record from its structural
	// discriminators.
	SelectAuto Selector = "auto"
	// SelectLegacy stamps every CPK_ITEM record as SchemaLegacy.
	SelectLegacy Selector = "legacy"
	// SelectCurrent stamps every CPK_ITEM record as SchemaCurrent.
	SelectCurrent Selector = "current"
)

// Kind is the decoded type of a single table value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Value is one decoded cell of a table entry. Offset and Width locate the
// encoded bytes in the source buffer so the cell can be patched in place.
type Value struct {
	Kind   Kind
	Str    string
	Null   bool // string value with an unresolvable offset
	Int    int64
	Float  float64
	Offset int
	Width  int
}

// emptyString reports whether the value is a string that is null or empty.
// The patch generators use empty strings as layout discriminators.
func (v Value) emptyString() bool {
	return v.Kind == KindString && (v.Null || v.Str == "")
}

// Record is one decoded table entry together with its byte span.
type Record struct {
	Name   string
	Values []Value
	Start  int
	Length int
	Schema Schema
}

// IsItem reports whether the record is a CPK_ITEM file entry.
func (r *Record) IsItem() bool { return r.Name == ItemName }

// KeyParts returns the two path components that identify the record. ok is
// false when the record does not start with two string values.
func (r *Record) KeyParts() (prefix, suffix string, ok bool) {
	if len(r.Values) < 2 || r.Values[0].Kind != KindString || r.Values[1].Kind != KindString {
		return "", "", false
	}
	return r.Values[0].Str, r.Values[1].Str, true
}

// Fields returns the values following the two path strings.
func (r *Record) Fields() []Value {
	if len(r.Values) <= 2 {
		return nil
	}
	return r.Values[2:]
}

// SourceSize reads the file size from the schema-dependent source field of
// a patched-table record. Sizes stored as quoted decimal strings are
// accepted; some patch generators emit them that way.
func (r *Record) SourceSize() (int64, bool) {
	var idx int
	switch r.Schema {
	case SchemaLegacy:
		idx = legacySourceIndex
	case SchemaCurrent:
		idx = currentSourceIndex
	default:
		return 0, false
	}
	fields := r.Fields()
	if idx >= len(fields) {
		return 0, false
	}
	f := fields[idx]
	switch f.Kind {
	case KindInt:
		return f.Int, true
	case KindString:
		if f.Null {
			return 0, false
		}
		n, err := strconv.ParseInt(strings.Trim(f.Str, `"`), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// DestField returns the size field an original-table record is patched at.
// The destination position is fixed across both patched-table generations.
func (r *Record) DestField() (Value, bool) {
	fields := r.Fields()
	if destIndex >= len(fields) || fields[destIndex].Kind != KindInt {
		return Value{}, false
	}
	return fields[destIndex], true
}

// detectSchema assigns the layout variant for a record under the given
// selector. The current-generation discriminator is checked first since a
// record with an empty suffix and empty leading fields satisfies both.
func detectSchema(r *Record, sel Selector) Schema {
	if !r.IsItem() {
		return SchemaNone
	}
	switch sel {
	case SelectLegacy:
		return SchemaLegacy
	case SelectCurrent:
		return SchemaCurrent
	}
	if _, _, ok := r.KeyParts(); !ok {
		return SchemaNone
	}
	fields := r.Fields()
	if len(fields) >= 2 && fields[0].emptyString() && fields[1].emptyString() {
		return SchemaCurrent
	}
	if r.Values[1].emptyString() {
		return SchemaLegacy
	}
	return SchemaNone
}
