// Package hierarchy contains pure rules for self-referencing parent chains:
// service category trees and job revision chains.
// This is part of the Functional Core - no I/O, only pure functions.
package hierarchy

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// Ancestors follows parent links upward from id and returns the chain,
// nearest first. parents maps a node to its parent; roots map to "" or are
// absent. The walk stops at a node already seen and reports cyclic=true, so
// corrupt data can never loop forever.
func Ancestors(id string, parents map[string]string) (chain []string, cyclic bool) {
	seen := map[string]bool{id: true}
	for cur := parents[id]; cur != ""; cur = parents[cur] {
		if seen[cur] {
			return chain, true
		}
		seen[cur] = true
		chain = append(chain, cur)
	}
	return chain, false
}

// WouldCreateCycle reports whether making newParent the parent of id closes a loop.
func WouldCreateCycle(id, newParent string, parents map[string]string) bool {
	if newParent == "" {
		return false
	}
	if newParent == id {
		return true
	}
	chain, cyclic := Ancestors(newParent, parents)
	if cyclic {
		return true
	}
	for _, a := range chain {
		if a == id {
			return true
		}
	}
	return false
}

// ParentContext provides context for re-parenting a node.
type ParentContext struct {
	Kind      string // e.g. "service category", used in messages
	ID        string
	NewParent string
	Parents   map[string]string
}

// CanSetParent evaluates whether the new parent keeps the hierarchy acyclic.
func CanSetParent(ctx ParentContext) GuardResult {
	if WouldCreateCycle(ctx.ID, ctx.NewParent, ctx.Parents) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("Cannot set parent of %s %s to %s: that would create a cycle", ctx.Kind, ctx.ID, ctx.NewParent),
		}
	}
	return GuardResult{Allowed: true}
}
