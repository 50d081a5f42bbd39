package main

import (
	"slices"

	"github.com/samber/lo"
	"github.com/samber/lo/mutable"
)

// Deck is an ordered, shuffled draw pile. One instantiation backs the
// caption deck and another the photo deck; nothing about the behavior
// differs between them.
type Deck[T any] struct {
	cards []T
}

// NewDeck copies the supplied cards and shuffles them once.
func NewDeck[T any](cards []T) *Deck[T] {
	d := &Deck[T]{cards: slices.Clone(cards)}
	d.Shuffle()
	return d
}

func (d *Deck[T]) Shuffle() {
	mutable.Shuffle(d.cards)
}

// Draw removes and returns the top card, or ErrEmptyDeck if none remain.
func (d *Deck[T]) Draw() (T, error) {
	if len(d.cards) == 0 {
		var zero T
		return zero, ErrEmptyDeck
	}

	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]

	return card, nil
}

// Remove extracts and returns every card matching the predicate.
func (d *Deck[T]) Remove(match func(T) bool) []T {
	kept, removed := lo.FilterReject(d.cards, func(card T, _ int) bool {
		return !match(card)
	})
	d.cards = kept

	return removed
}

// Sample returns a random card without removing it. The second return is
// false when the deck is empty.
func (d *Deck[T]) Sample() (T, bool) {
	if len(d.cards) == 0 {
		var zero T
		return zero, false
	}

	return lo.Sample(d.cards), true
}

// Cards returns a copy of the current draw order, for snapshots.
func (d *Deck[T]) Cards() []T {
	return slices.Clone(d.cards)
}

func (d *Deck[T]) Count() int {
	return len(d.cards)
}
