package imgfilter

import (
	"runtime"
	"sync"
	"sync/atomic"
)

var maxProcs int64

// SetMaxProcs limits the number of goroutines a single filter stage uses.
// A value less than 1 removes the limit, leaving it at GOMAXPROCS.
func SetMaxProcs(value int) {
	if value < 1 {
		value = 0
	}
	atomic.StoreInt64(&maxProcs, int64(value))
}

// parallel feeds the row indices [start, stop) to fn running in separate goroutines.
// Every index is delivered exactly once.
func parallel(start, stop int, fn func(<-chan int)) {
	count := stop - start
	if count < 1 {
		return
	}

	procs := runtime.GOMAXPROCS(0)
	limit := int(atomic.LoadInt64(&maxProcs))
	if procs > limit && limit > 0 {
		procs = limit
	}
	if procs > count {
		procs = count
	}

	c := make(chan int, count)
	for i := start; i < stop; i++ {
		c <- i
	}
	close(c)

	var wg sync.WaitGroup
	for range procs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(c)
		}()
	}
	wg.Wait()
}

// clamp rounds and clamps float64 value to fit into uint8.
func clamp(x float64) uint8 {
	v := int64(x + 0.5)
	if v > 255 {
		return 255
	}
	if v > 0 {
		return uint8(v)
	}
	return 0
}
