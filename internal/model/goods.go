package model

import (
	"fmt"
	"maps"
	"sync"
)

// Goods stores goods amounts of a location for the current turn and a
// snapshot taken at the start of the turn.
//
// Lock order: current before previous. No method takes previous alone
// and then current.
type Goods struct {
	current  goodsState
	previous goodsState
}

type goodsState struct {
	mu      sync.Mutex
	amounts map[string]int
}

// NewGoods creates an empty store.
func NewGoods() *Goods {
	return &Goods{
		current:  goodsState{amounts: make(map[string]int)},
		previous: goodsState{amounts: make(map[string]int)},
	}
}

// Amount returns the current amount of goodsType.
func (g *Goods) Amount(goodsType string) int {
	g.current.mu.Lock()
	defer g.current.mu.Unlock()
	return g.current.amounts[goodsType]
}

// PreviousAmount returns the amount of goodsType at the last snapshot.
func (g *Goods) PreviousAmount(goodsType string) int {
	g.previous.mu.Lock()
	defer g.previous.mu.Unlock()
	return g.previous.amounts[goodsType]
}

// Add adds n of goodsType (n may be negative) and returns the new amount.
// The amount never drops below zero.
func (g *Goods) Add(goodsType string, n int) (int, error) {
	g.current.mu.Lock()
	defer g.current.mu.Unlock()
	next := g.current.amounts[goodsType] + n
	if next < 0 {
		return g.current.amounts[goodsType], fmt.Errorf("%s: have %d, need %d: %w",
			goodsType, g.current.amounts[goodsType], -n, ErrInsufficientGoods)
	}
	if next == 0 {
		delete(g.current.amounts, goodsType)
	} else {
		g.current.amounts[goodsType] = next
	}
	return next, nil
}

// Remove removes n of goodsType.
func (g *Goods) Remove(goodsType string, n int) error {
	_, err := g.Add(goodsType, -n)
	return err
}

// Set overwrites the current amount of goodsType.
func (g *Goods) Set(goodsType string, n int) {
	g.current.mu.Lock()
	defer g.current.mu.Unlock()
	if n <= 0 {
		delete(g.current.amounts, goodsType)
		return
	}
	g.current.amounts[goodsType] = n
}

// Amounts returns a copy of the current amounts.
func (g *Goods) Amounts() map[string]int {
	g.current.mu.Lock()
	defer g.current.mu.Unlock()
	return maps.Clone(g.current.amounts)
}

// SaveState snapshots current amounts as the previous-turn state.
func (g *Goods) SaveState() {
	g.current.mu.Lock()
	defer g.current.mu.Unlock()
	g.previous.mu.Lock()
	defer g.previous.mu.Unlock()
	g.previous.amounts = maps.Clone(g.current.amounts)
}

// Changes returns the per-type difference between current and previous amounts.
func (g *Goods) Changes() map[string]int {
	g.current.mu.Lock()
	defer g.current.mu.Unlock()
	g.previous.mu.Lock()
	defer g.previous.mu.Unlock()

	out := make(map[string]int)
	for k, v := range g.current.amounts {
		if d := v - g.previous.amounts[k]; d != 0 {
			out[k] = d
		}
	}
	for k, v := range g.previous.amounts {
		if _, ok := g.current.amounts[k]; !ok {
			out[k] = -v
		}
	}
	return out
}

// Clear empties both states.
func (g *Goods) Clear() {
	g.current.mu.Lock()
	defer g.current.mu.Unlock()
	g.previous.mu.Lock()
	defer g.previous.mu.Unlock()
	clear(g.current.amounts)
	clear(g.previous.amounts)
}
