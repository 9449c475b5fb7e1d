package diagnostics

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Collector accumulates diagnostics, dropping exact duplicates.
type Collector struct {
	errorSet map[string]*DiagnosticError
	order    []*DiagnosticError
}

func NewCollector() *Collector {
	return &Collector{errorSet: make(map[string]*DiagnosticError)}
}

func (c *Collector) Add(err *DiagnosticError) {
	key := err.Key()
	if _, exists := c.errorSet[key]; exists {
		return
	}
	c.errorSet[key] = err
	c.order = append(c.order, err)
}

func (c *Collector) AddAll(errs []*DiagnosticError) {
	for _, err := range errs {
		c.Add(err)
	}
}

func (c *Collector) Len() int {
	return len(c.order)
}

func (c *Collector) HasErrors() bool {
	return len(c.order) > 0
}

// Errors returns the collected diagnostics sorted for reporting.
func (c *Collector) Errors() []*DiagnosticError {
	result := slices.Clone(c.order)
	Sort(result)
	return result
}

// Sort orders diagnostics by module, then range, then code, then message.
func Sort(errs []*DiagnosticError) {
	slices.SortStableFunc(errs, Compare)
}

func Compare(a, b *DiagnosticError) int {
	if c := a.Module.Compare(b.Module); c != 0 {
		return c
	}
	if c := a.Range.Compare(b.Range); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Code), string(b.Code)); c != 0 {
		return c
	}
	return strings.Compare(a.Message, b.Message)
}

// Render joins the rendered diagnostics one per line.
func Render(errs []*DiagnosticError) string {
	var sb strings.Builder
	for _, err := range errs {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
