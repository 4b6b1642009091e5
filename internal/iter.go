package internal

import (
	"iter"
)

// Peekable is a pull iterator with a single element of lookahead.
type Peekable[T any] struct {
	next func() (T, bool)
	stop func()

	head   T
	ok     bool
	peeked bool
}

// NewPeekable starts pulling from seq. Call Stop when done.
func NewPeekable[T any](seq iter.Seq[T]) *Peekable[T] {
	next, stop := iter.Pull(seq)
	return &Peekable[T]{next: next, stop: stop}
}

// Peek returns the next value without consuming it.
func (p *Peekable[T]) Peek() (value T, ok bool) {
	if !p.peeked {
		p.head, p.ok = p.next()
		p.peeked = true
	}

	return p.head, p.ok
}

// Next consumes and returns the next value.
func (p *Peekable[T]) Next() (value T, ok bool) {
	value, ok = p.Peek()
	if ok {
		p.peeked = false
	}
	return
}

// Stop releases the underlying iterator.
func (p *Peekable[T]) Stop() {
	p.stop()
}

// IterSeqConcat concatenates multiple iterators into a single iterator sequence.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}
