package bulk

import "strings"

type branch struct {
	row   int
	value string
}

// Update builds a single UPDATE that rewrites many rows at once using one
// CASE expression per value column:
//
//	UPDATE t SET name = CASE WHEN id = '1' THEN 'a' WHEN id = '2' THEN 'b' END WHERE id IN ('1','2');
//
// Columns in keys only take part in the WHEN conditions and the WHERE clause.
// No ELSE branch is emitted, so a row matched by WHERE that has no WHEN for a
// column gets that column set to NULL by the database.
// Returns an empty string when there is no row or no value column.
func Update(table string, rows Batch, keys KeySet) string {
	if len(rows) == 0 {
		return ""
	}

	cases := make([]string, len(rows))

	var setCols []string
	branches := make(map[string][]branch)

	var keyCols []string
	keyVals := make(map[string][]string)
	seen := make(map[string]map[string]struct{})

	for i, row := range rows {
		var conds []string
		for _, f := range row {
			if !keys.Has(f.Column) {
				if _, ok := branches[f.Column]; !ok {
					setCols = append(setCols, f.Column)
				}
				branches[f.Column] = append(branches[f.Column], branch{row: i, value: Literal(f.Value)})
				continue
			}

			lit := keyLiteral(f.Value)
			conds = append(conds, f.Column+" = "+lit)

			if _, ok := seen[f.Column]; !ok {
				keyCols = append(keyCols, f.Column)
				seen[f.Column] = make(map[string]struct{})
			}
			if _, dup := seen[f.Column][lit]; !dup {
				seen[f.Column][lit] = struct{}{}
				keyVals[f.Column] = append(keyVals[f.Column], lit)
			}
		}
		cases[i] = strings.Join(conds, " AND ")
	}

	if len(setCols) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")

	for i, col := range setCols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = CASE")
		for _, b := range branches[col] {
			sb.WriteString(" WHEN ")
			sb.WriteString(cases[b.row])
			sb.WriteString(" THEN ")
			sb.WriteString(b.value)
		}
		sb.WriteString(" END")
	}

	if len(keyCols) > 0 {
		sb.WriteString(" WHERE ")
		for i, col := range keyCols {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString(col)
			sb.WriteString(" IN (")
			sb.WriteString(strings.Join(keyVals[col], ","))
			sb.WriteByte(')')
		}
	}

	sb.WriteString(";\n")
	return sb.String()
}
