package deckgen

// Scope holds the variables defined at one nesting level of the definition
// document.
type Scope map[string]string

// ScopeStack is the lexical scope chain used during directive resolution.
// Every element pushes a fresh Scope on entry and pops it on exit, so a
// variable is visible exactly while its defining element is open.
type ScopeStack struct {
	scopes []Scope
}

// Push adds a fresh innermost Scope.
func (s *ScopeStack) Push() {
	s.scopes = append(s.scopes, Scope{})
}

// Pop discards the innermost Scope.
func (s *ScopeStack) Pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// Depth returns the number of live scopes.
func (s *ScopeStack) Depth() int { return len(s.scopes) }

// Set defines name in the innermost scope, shadowing any outer definition.
func (s *ScopeStack) Set(name, value string) {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes[len(s.scopes)-1][name] = value
}

// Lookup resolves name against the nearest enclosing scope that defines it,
// searching innermost to outermost.
func (s *ScopeStack) Lookup(name string) (string, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return v, true
		}
	}
	return "", false
}

// Modify overwrites name in the nearest enclosing scope that already defines
// it, searching innermost to outermost. It reports whether a defining scope
// was found.
func (s *ScopeStack) Modify(name, value string) bool {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if _, ok := s.scopes[i][name]; ok {
			s.scopes[i][name] = value
			return true
		}
	}
	return false
}

// Bindings returns every visible variable with inner scopes shadowing outer
// ones. Expression evaluation uses this as its environment.
func (s *ScopeStack) Bindings() map[string]string {
	out := make(map[string]string)
	for _, sc := range s.scopes {
		for k, v := range sc {
			out[k] = v
		}
	}
	return out
}
