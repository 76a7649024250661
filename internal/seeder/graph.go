package seeder

import "fmt"

// DependencyGraph orders table builders so that every table is built after
// the tables it reads from.
type DependencyGraph struct {
	tables map[string]*TableInfo
	names  []string
	order  []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		tables: make(map[string]*TableInfo),
	}
}

func (g *DependencyGraph) AddTable(table *TableInfo) {
	if _, exists := g.tables[table.Name]; !exists {
		g.names = append(g.names, table.Name)
	}
	g.tables[table.Name] = table
}

// BuildOrder returns table names dependencies first. Ties keep the order in
// which tables were added, so the build sequence is stable between runs.
func (g *DependencyGraph) BuildOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(tableName string) error {
		if temp[tableName] {
			return fmt.Errorf("circular dependency detected involving table: %s", tableName)
		}
		if visited[tableName] {
			return nil
		}

		table, ok := g.tables[tableName]
		if !ok {
			return fmt.Errorf("unknown table: %s", tableName)
		}

		temp[tableName] = true
		for _, dep := range table.Dependencies {
			if dep != tableName {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		temp[tableName] = false
		visited[tableName] = true
		order = append(order, tableName)
		return nil
	}

	for _, tableName := range g.names {
		if !visited[tableName] {
			if err := visit(tableName); err != nil {
				return nil, err
			}
		}
	}

	g.order = order
	return order, nil
}

func (g *DependencyGraph) Table(name string) *TableInfo {
	return g.tables[name]
}

func (g *DependencyGraph) GetOrder() []string {
	return g.order
}
