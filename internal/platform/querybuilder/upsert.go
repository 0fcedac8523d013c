package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// UpsertSpec describes a diff-aware INSERT … ON CONFLICT statement. Columns
// listed in UpdateCols are assigned from EXCLUDED and the whole UPDATE branch
// is gated on at least one of them actually differing, so a semantically
// identical re-ingest touches no rows.
type UpsertSpec struct {
	Table        string
	ConflictCols []string
	UpdateCols   []string
}

// UpsertModels builds a multi-row diff-aware upsert from db-tagged structs.
// The statement ends with `RETURNING (xmax = 0) AS inserted`; rows skipped by
// the diff gate return nothing, so scanning the result distinguishes
// inserted, updated and untouched rows.
func UpsertModels(spec UpsertSpec, models []any) (string, []any, error) {
	if strings.TrimSpace(spec.Table) == "" {
		return "", nil, fmt.Errorf("upsert table is required")
	}
	if len(spec.ConflictCols) == 0 {
		return "", nil, fmt.Errorf("upsert conflict columns are required")
	}
	if len(models) == 0 {
		return "", nil, fmt.Errorf("upsert models are required")
	}

	cols, firstVals, err := columnsAndValuesFromModel(models[0])
	if err != nil {
		return "", nil, err
	}

	builder := InsertInto(spec.Table).Columns(cols...).Values(firstVals...)
	for _, model := range models[1:] {
		rowCols, vals, err := columnsAndValuesFromModel(model)
		if err != nil {
			return "", nil, err
		}
		if !equalColumns(cols, rowCols) {
			return "", nil, fmt.Errorf("upsert models have mismatched columns")
		}
		builder.Values(vals...)
	}

	return builder.Suffix(upsertSuffix(spec)).ToSQL()
}

func upsertSuffix(spec UpsertSpec) string {
	var buf strings.Builder
	buf.WriteString("ON CONFLICT (")
	buf.WriteString(strings.Join(spec.ConflictCols, ", "))
	buf.WriteString(")")

	if len(spec.UpdateCols) == 0 {
		buf.WriteString(" DO NOTHING RETURNING (xmax = 0) AS inserted")
		return buf.String()
	}

	buf.WriteString(" DO UPDATE SET ")
	for i, col := range spec.UpdateCols {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(col)
		buf.WriteString(" = EXCLUDED.")
		buf.WriteString(col)
	}

	buf.WriteString(" WHERE ")
	for i, col := range spec.UpdateCols {
		if i > 0 {
			buf.WriteString(" OR ")
		}
		buf.WriteString(spec.Table)
		buf.WriteString(".")
		buf.WriteString(col)
		buf.WriteString(" IS DISTINCT FROM EXCLUDED.")
		buf.WriteString(col)
	}
	buf.WriteString(" RETURNING (xmax = 0) AS inserted")

	return buf.String()
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := strings.TrimSpace(field.Tag.Get("db"))
		if tag == "" || tag == "-" {
			continue
		}
		col := strings.TrimSpace(strings.Split(tag, ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
