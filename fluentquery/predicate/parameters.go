package predicate

import (
	"fmt"
)

type Parameter struct {
	Name  string
	Value any
}

// Parameters is the ordered bag of values bound while rendering one statement.
// It is not safe for concurrent use.
type Parameters struct {
	items []Parameter
	index map[string]int
}

func NewParameters() *Parameters {
	return &Parameters{index: make(map[string]int)}
}

// Add binds value under a name derived from name and returns the unique name
// actually used: <name>_<n>, n being the bag size, incremented until unused.
func (p *Parameters) Add(name string, value any) string {
	for n := len(p.items); ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if _, taken := p.index[candidate]; !taken {
			p.index[candidate] = len(p.items)
			p.items = append(p.items, Parameter{Name: candidate, Value: value})
			return candidate
		}
	}
}

func (p *Parameters) Len() int {
	return len(p.items)
}

func (p *Parameters) Value(name string) (any, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.items[i].Value, true
}

// All returns the bound parameters in binding order.
func (p *Parameters) All() []Parameter {
	return append([]Parameter(nil), p.items...)
}
