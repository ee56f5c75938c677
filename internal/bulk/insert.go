package bulk

import "strings"

// Insert builds a multi-row INSERT for table. The column list comes from the
// first row and every row is rendered positionally in its own field order.
// Returns an empty string when there is nothing to insert.
func Insert(table string, rows Batch) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (`")
	sb.WriteString(strings.Join(rows[0].Columns(), "`,`"))
	sb.WriteString("`) VALUES ")

	values := make([]string, 0, len(rows[0]))
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		values = values[:0]
		for _, f := range row {
			values = append(values, Literal(f.Value))
		}
		sb.WriteByte('(')
		sb.WriteString(strings.Join(values, ","))
		sb.WriteByte(')')
	}

	sb.WriteString(";\n")
	return sb.String()
}
