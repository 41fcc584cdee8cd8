// Package roster implements the two-set reconciliation behind every
// "choose users" flow. A Picker splits one user universe into a selected
// set (driven by explicit picks) and an available set, and keeps both
// correct while the underlying roster changes underneath an in-progress
// selection.
package roster

import (
	"sort"

	"github.com/Shri333/webtext-frontend/internal/model"
)

// Picker holds two disjoint user sets over the same universe. Only Pick
// and Unpick ever move a user between the sets; Reconcile adjusts
// membership of the universe without touching anyone's side.
type Picker struct {
	selected  []model.User
	available []model.User
}

// NewPicker starts a selection with everyone available and nobody picked.
func NewPicker(available []model.User) *Picker {
	p := &Picker{available: make([]model.User, len(available))}
	copy(p.available, available)
	return p
}

// Pick moves a user from available to selected. Reports whether the id was
// available.
func (p *Picker) Pick(id string) bool {
	for i, u := range p.available {
		if u.ID == id {
			p.selected = append(p.selected, u)
			p.available = append(p.available[:i], p.available[i+1:]...)
			return true
		}
	}
	return false
}

// Unpick moves a user back from selected to available.
func (p *Picker) Unpick(id string) bool {
	for i, u := range p.selected {
		if u.ID == id {
			p.available = append(p.available, u)
			p.selected = append(p.selected[:i], p.selected[i+1:]...)
			return true
		}
	}
	return false
}

// Selected returns a copy of the picked users.
func (p *Picker) Selected() []model.User {
	out := make([]model.User, len(p.selected))
	copy(out, p.selected)
	return out
}

// Available returns a copy of the unpicked users.
func (p *Picker) Available() []model.User {
	out := make([]model.User, len(p.available))
	copy(out, p.available)
	return out
}

// SelectedIDs returns the picked identities in pick order.
func (p *Picker) SelectedIDs() []string {
	ids := make([]string, 0, len(p.selected))
	for _, u := range p.selected {
		ids = append(ids, u.ID)
	}
	return ids
}

// Reconcile applies a roster change to both sets in a single pass:
//
//   - an identity in the roster but in neither set is a new user, added to
//     available (default unselected);
//   - an identity present with a stale username is overwritten in place,
//     preserving which set holds it;
//   - an identity held by either set but gone from the roster was deleted,
//     and is removed from whichever set holds it.
//
// The caller supplies the roster already filtered for its context (users
// already in the chat, the viewer). After one pass the union of the two
// sets exactly covers the roster.
func (p *Picker) Reconcile(roster []model.User) {
	if p.converged(roster) {
		return
	}
	byID := make(map[string]model.User, len(roster))
	for _, u := range roster {
		byID[u.ID] = u
	}

	keepSelected := p.selected[:0]
	for _, u := range p.selected {
		if current, ok := byID[u.ID]; ok {
			u.Username = current.Username
			keepSelected = append(keepSelected, u)
			delete(byID, u.ID)
		}
	}
	p.selected = keepSelected

	keepAvailable := p.available[:0]
	for _, u := range p.available {
		if current, ok := byID[u.ID]; ok {
			u.Username = current.Username
			keepAvailable = append(keepAvailable, u)
			delete(byID, u.ID)
		}
	}
	p.available = keepAvailable

	// Whatever survived in byID is new to the universe. Walk the roster
	// slice, not the map, to keep the server's order.
	for _, u := range roster {
		if _, ok := byID[u.ID]; ok {
			p.available = append(p.available, u)
		}
	}
}

// converged reports whether roster and the union of the two sets already
// agree, comparing both sides sorted by identity.
func (p *Picker) converged(roster []model.User) bool {
	union := make([]model.User, 0, len(p.selected)+len(p.available))
	union = append(union, p.selected...)
	union = append(union, p.available...)
	if len(union) != len(roster) {
		return false
	}
	sorted := make([]model.User, len(roster))
	copy(sorted, roster)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	sort.Slice(union, func(i, j int) bool { return union[i].ID < union[j].ID })
	for i := range sorted {
		if sorted[i].ID != union[i].ID || sorted[i].Username != union[i].Username {
			return false
		}
	}
	return true
}
