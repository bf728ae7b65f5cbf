package feature

import (
	"slices"
	"sync"
)

// AbilityEntry is an ability held by a container.
// Depth is 0 for features declared on the owner and grows by one per
// inheritance step.
type AbilityEntry struct {
	Ability *Ability
	Depth   int
}

// ModifierEntry is a modifier held by a container.
type ModifierEntry struct {
	Modifier *Modifier
	Depth    int
}

// Container is the set of abilities and modifiers owned by one type
// definition or live object. Insertion order is preserved; it is the
// tie-break order when modifiers share an index.
//
// Thread-safe: one RWMutex guards both lists.
type Container struct {
	mu        sync.RWMutex
	abilities []AbilityEntry
	modifiers []ModifierEntry
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{}
}

// AddAbility adds an ability declared on the owner.
// Adding an identical occurrence twice is a no-op.
func (c *Container) AddAbility(a *Ability) {
	c.addAbility(a, 0)
}

func (c *Container) addAbility(a *Ability, depth int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.abilities {
		if e.Ability == a || (e.Depth == depth && e.Ability.Identical(a)) {
			return
		}
	}
	c.abilities = append(c.abilities, AbilityEntry{Ability: a, Depth: depth})
}

// AddModifier adds a modifier declared on the owner.
func (c *Container) AddModifier(m *Modifier) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.modifiers {
		if e.Modifier == m {
			return
		}
	}
	c.modifiers = append(c.modifiers, ModifierEntry{Modifier: m})
}

// RemoveAbility removes abilities with the same id and source as a.
// Returns the number removed.
func (c *Container) RemoveAbility(a *Ability) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.abilities)
	c.abilities = slices.DeleteFunc(c.abilities, func(e AbilityEntry) bool {
		return e.Ability.Same(a)
	})
	return before - len(c.abilities)
}

// RemoveModifier removes modifiers with the same id and source as m.
func (c *Container) RemoveModifier(m *Modifier) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.modifiers)
	c.modifiers = slices.DeleteFunc(c.modifiers, func(e ModifierEntry) bool {
		return e.Modifier.Same(m)
	})
	return before - len(c.modifiers)
}

// RemoveAbilitiesByID removes every ability with the given id, whatever its source.
func (c *Container) RemoveAbilitiesByID(id TraitID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.abilities)
	c.abilities = slices.DeleteFunc(c.abilities, func(e AbilityEntry) bool {
		return e.Ability.ID == id
	})
	return before - len(c.abilities)
}

// RemoveModifiersByID removes every modifier with the given id, whatever its source.
func (c *Container) RemoveModifiersByID(id TraitID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.modifiers)
	c.modifiers = slices.DeleteFunc(c.modifiers, func(e ModifierEntry) bool {
		return e.Modifier.ID == id
	})
	return before - len(c.modifiers)
}

// RemoveSource removes every feature contributed by src.
func (c *Container) RemoveSource(src Source) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.abilities) + len(c.modifiers)
	c.abilities = slices.DeleteFunc(c.abilities, func(e AbilityEntry) bool {
		return SameSource(e.Ability.Source, src)
	})
	c.modifiers = slices.DeleteFunc(c.modifiers, func(e ModifierEntry) bool {
		return SameSource(e.Modifier.Source, src)
	})
	return before - len(c.abilities) - len(c.modifiers)
}

// ReplaceSource re-attributes every feature contributed by from to to.
// Features are copied before the change so containers sharing them are
// not affected.
func (c *Container) ReplaceSource(from, to Source) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for i, e := range c.abilities {
		if SameSource(e.Ability.Source, from) {
			a := e.Ability.Clone()
			a.Source = to
			c.abilities[i].Ability = a
			n++
		}
	}
	for i, e := range c.modifiers {
		if SameSource(e.Modifier.Source, from) {
			m := e.Modifier.Clone()
			m.Source = to
			c.modifiers[i].Modifier = m
			n++
		}
	}
	return n
}

// Inherit appends copies of parent's features one level deeper than they
// were in parent.
func (c *Container) Inherit(parent *Container) {
	if parent == nil || parent == c {
		return
	}
	abilities, modifiers := parent.entries()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range abilities {
		c.abilities = append(c.abilities, AbilityEntry{Ability: e.Ability.Clone(), Depth: e.Depth + 1})
	}
	for _, e := range modifiers {
		c.modifiers = append(c.modifiers, ModifierEntry{Modifier: e.Modifier.Clone(), Depth: e.Depth + 1})
	}
}

// Merge appends copies of other's features keeping their depth.
func (c *Container) Merge(other *Container) {
	if other == nil || other == c {
		return
	}
	abilities, modifiers := other.entries()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range abilities {
		c.abilities = append(c.abilities, AbilityEntry{Ability: e.Ability.Clone(), Depth: e.Depth})
	}
	for _, e := range modifiers {
		c.modifiers = append(c.modifiers, ModifierEntry{Modifier: e.Modifier.Clone(), Depth: e.Depth})
	}
}

// Clone returns a deep copy.
func (c *Container) Clone() *Container {
	out := NewContainer()
	out.Merge(c)
	return out
}

// Clear drops every feature.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abilities = nil
	c.modifiers = nil
}

// Abilities returns the entries with the given id in insertion order.
func (c *Container) Abilities(id TraitID) []AbilityEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []AbilityEntry
	for _, e := range c.abilities {
		if e.Ability.ID == id {
			out = append(out, e)
		}
	}
	return out
}

// Modifiers returns the entries with the given id in insertion order.
func (c *Container) Modifiers(id TraitID) []ModifierEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ModifierEntry
	for _, e := range c.modifiers {
		if e.Modifier.ID == id {
			out = append(out, e)
		}
	}
	return out
}

// AllAbilities returns a snapshot of every ability entry.
func (c *Container) AllAbilities() []AbilityEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.abilities)
}

// AllModifiers returns a snapshot of every modifier entry.
func (c *Container) AllModifiers() []ModifierEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.modifiers)
}

// FromSource returns the abilities and modifiers contributed by src.
func (c *Container) FromSource(src Source) ([]*Ability, []*Modifier) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var abilities []*Ability
	var modifiers []*Modifier
	for _, e := range c.abilities {
		if SameSource(e.Ability.Source, src) {
			abilities = append(abilities, e.Ability)
		}
	}
	for _, e := range c.modifiers {
		if SameSource(e.Modifier.Source, src) {
			modifiers = append(modifiers, e.Modifier)
		}
	}
	return abilities, modifiers
}

// Len returns the number of abilities and modifiers held.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.abilities) + len(c.modifiers)
}

func (c *Container) entries() ([]AbilityEntry, []ModifierEntry) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.abilities), slices.Clone(c.modifiers)
}
