package symbols

import (
	"fmt"

	"github.com/funvibe/tycheck/internal/typesystem"
)

// LocalTypingContext is the stack of local value frames used while checking one class
// member. A lookup that finds a name in an outer frame marks it as captured in every
// frame above that one, so lambdas learn which outer values they close over.
type LocalTypingContext struct {
	layers []*layer
}

func NewLocalTypingContext() *LocalTypingContext {
	return &LocalTypingContext{layers: []*layer{newLayer(ScopeMember)}}
}

// Depth is the number of frames currently pushed.
func (c *LocalTypingContext) Depth() int {
	return len(c.layers)
}

func (c *LocalTypingContext) top() *layer {
	return c.layers[len(c.layers)-1]
}

// Lookup finds the closest binding of name.
func (c *LocalTypingContext) Lookup(name string) (typesystem.Type, bool) {
	if t, ok := c.top().localValues[name]; ok {
		return t, true
	}
	for level := len(c.layers) - 2; level >= 0; level-- {
		t, ok := c.layers[level].localValues[name]
		if !ok {
			continue
		}
		for captured := level + 1; captured < len(c.layers); captured++ {
			c.layers[captured].capture(name, t)
		}
		return t, true
	}
	return nil, false
}

// Define binds name in the innermost frame. It returns false when the name is already
// visible: a binding in an outer frame is still shadowed by the new one, a binding in the
// innermost frame is kept.
func (c *LocalTypingContext) Define(name string, t typesystem.Type) bool {
	ok := true
	for level := 0; level < len(c.layers)-1; level++ {
		if _, exists := c.layers[level].localValues[name]; exists {
			ok = false
		}
	}
	top := c.top()
	if _, exists := top.localValues[name]; exists {
		return false
	}
	top.localValues[name] = t
	return ok
}

// Remove deletes a binding from the innermost frame.
func (c *LocalTypingContext) Remove(name string) {
	top := c.top()
	if _, ok := top.localValues[name]; !ok {
		panic(fmt.Sprintf("%s is not found in this layer", name))
	}
	delete(top.localValues, name)
}

// WithNestedScope runs block inside a fresh frame.
func (c *LocalTypingContext) WithNestedScope(scopeType ScopeType, block func()) {
	c.layers = append(c.layers, newLayer(scopeType))
	defer c.pop()
	block()
}

// WithNestedScopeReturnCaptured runs block inside a fresh frame and returns the outer
// values the block looked up, in first-use order.
func (c *LocalTypingContext) WithNestedScopeReturnCaptured(scopeType ScopeType, block func()) []Symbol {
	c.layers = append(c.layers, newLayer(scopeType))
	defer c.pop()
	block()
	return c.top().capturedSymbols()
}

func (c *LocalTypingContext) pop() {
	if len(c.layers) == 1 {
		panic("cannot pop the member frame")
	}
	c.layers = c.layers[:len(c.layers)-1]
}
