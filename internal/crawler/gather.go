package crawler

import (
	"fmt"
	"sync"
)

// Result holds the outcome of one fan-out task
type Result[T any] struct {
	Value T
	Err   error
}

// gather runs task(i) for i in [0, n) concurrently and waits for all of
// them. results[i] always belongs to task i, whatever order the tasks
// finish in. A panicking task is reported as an error in its own slot.
func gather[T any](n int, task func(i int) (T, error)) []Result[T] {
	results := make([]Result[T], n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result[T]{Err: fmt.Errorf("task %d panicked: %v", i, r)}
				}
			}()

			v, err := task(i)
			results[i] = Result[T]{Value: v, Err: err}
		}(i)
	}

	wg.Wait()
	return results
}
