// Package history keeps a bounded, timestamped record of evaluated
// expressions. The record lives in memory only.
package history

import (
	"math/big"
	"time"

	"github.com/edwingeng/deque"

	"github.com/zephyrtronium/calc"
)

// DefaultMax is the number of entries kept when New is given no positive
// limit.
const DefaultMax = 100

// TimeLayout is the layout of entry timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Entry is one evaluated expression.
type Entry struct {
	// Expr is the expression text as entered.
	Expr string
	// Result is the value of the expression.
	Result *big.Rat
	// Time is when the expression was evaluated.
	Time time.Time
}

// Format formats the entry with its result rounded to the given number of
// decimal places.
func (e Entry) Format(places int) string {
	return "[" + e.Time.Format(TimeLayout) + "] " + e.Expr + " = " + calc.Format(e.Result, places)
}

func (e Entry) String() string {
	return e.Format(calc.DefaultPlaces)
}

// History is an append-only list of entries holding at most a fixed number of
// the most recent. It is not safe to use a History concurrently.
type History struct {
	entries deque.Deque
	max     int
	now     func() time.Time
}

// Option is an option used when creating a History.
type Option func(*History)

// Clock sets the time source for new entries.
func Clock(now func() time.Time) Option {
	return func(h *History) {
		h.now = now
	}
}

// New creates an empty history holding at most max entries. If max is not
// positive, the limit is DefaultMax.
func New(max int, opts ...Option) *History {
	if max <= 0 {
		max = DefaultMax
	}
	h := History{
		entries: deque.NewDeque(),
		max:     max,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return &h
}

// Add records an expression and its result, dropping the oldest entry if the
// history is full. The history keeps its own copy of result.
func (h *History) Add(expr string, result *big.Rat) Entry {
	e := Entry{
		Expr:   expr,
		Result: new(big.Rat).Set(result),
		Time:   h.now(),
	}
	h.entries.PushBack(e)
	for h.entries.Len() > h.max {
		h.entries.PopFront()
	}
	return e
}

// All returns the entries, oldest first.
func (h *History) All() []Entry {
	r := make([]Entry, 0, h.entries.Len())
	h.entries.Range(func(i int, v deque.Elem) bool {
		r = append(r, v.(Entry))
		return true
	})
	return r
}

// Clear removes all entries.
func (h *History) Clear() {
	h.entries = deque.NewDeque()
}

// Len returns the number of entries.
func (h *History) Len() int {
	return h.entries.Len()
}

// Empty returns whether there are no entries.
func (h *History) Empty() bool {
	return h.entries.Empty()
}

// Max returns the maximum number of entries the history holds.
func (h *History) Max() int {
	return h.max
}
