package db

import (
	"fmt"
	"strings"
)

// Patch накапливает пары колонка/значение для частичного UPDATE.
// Имена колонок задаются только кодом, значения уходят плейсхолдерами.
type Patch struct {
	columns []string
	args    []any
}

func (p *Patch) Set(column string, value any) {
	p.columns = append(p.columns, column)
	p.args = append(p.args, value)
}

func (p *Patch) Empty() bool {
	return len(p.columns) == 0
}

// Assignments возвращает фрагмент "col = $n, ..." начиная с номера start
// и аргументы в том же порядке.
func (p *Patch) Assignments(start int) (string, []any) {
	assignments := make([]string, 0, len(p.columns))
	for i, column := range p.columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, start+i))
	}

	return strings.Join(assignments, ", "), p.args
}
