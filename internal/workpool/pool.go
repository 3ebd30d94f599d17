// Package workpool runs independent indexed tasks either sequentially or on
// a bounded set of goroutines.
//
// Tasks report their own outcome; Run only fails when the harness itself
// fails, which includes a task panicking.
package workpool

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"cartridge-engine/internal/diagnostic"
)

// Pool executes fn(i) for every i in [0, n).
type Pool interface {
	Run(n int, fn func(i int)) error
	// Width returns the maximum number of concurrent tasks.
	Width() int
}

// New returns Sequential for parallelism <= 1 and Bounded otherwise.
func New(parallelism int) Pool {
	if parallelism <= 1 {
		return Sequential{}
	}

	return NewBounded(parallelism)
}

// Sequential runs tasks one after another on the calling goroutine.
type Sequential struct{}

// Run implements Pool.
func (Sequential) Run(n int, fn func(i int)) error {
	for i := range n {
		err := protect(i, fn)
		if err != nil {
			return err
		}
	}

	return nil
}

// Width implements Pool.
func (Sequential) Width() int { return 1 }

// Bounded runs at most width tasks at a time.
type Bounded struct {
	width int
}

// NewBounded creates a Bounded pool. Widths below 1 are raised to 1.
func NewBounded(width int) Bounded {
	return Bounded{width: max(width, 1)}
}

// Run implements Pool. It waits for every started task before returning.
func (b Bounded) Run(n int, fn func(i int)) error {
	var g errgroup.Group

	g.SetLimit(max(b.width, 1))

	for i := range n {
		g.Go(func() error {
			return protect(i, fn)
		})
	}

	return g.Wait()
}

// Width implements Pool.
func (b Bounded) Width() int { return max(b.width, 1) }

// protect runs fn(i) and converts a panic into a TECHNICAL error.
func protect(i int, fn func(i int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = diagnostic.Technical(diagnostic.CodeGenericTechnical, "", "",
				"bulk execution failed at record %d", i).Wrap(fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
		}
	}()

	fn(i)

	return nil
}
