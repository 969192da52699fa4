package ops

import "github.com/remeh/sizedwaitgroup"

// ParallelMap applies fn to every item of in concurrently, bounded to at
// most parallelism in-flight goroutines, and returns results in the same
// order as in. parallelism <= 1 runs sequentially. The first error
// encountered is returned; all in-flight calls still run to completion
// before ParallelMap returns.
func ParallelMap[T, R any](in []T, parallelism int, fn func(T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	errs := make([]error, len(in))

	if parallelism <= 1 {
		for i, item := range in {
			r, err := fn(item)
			out[i] = r
			errs[i] = err
		}
	} else {
		swg := sizedwaitgroup.New(parallelism)
		for i, item := range in {
			swg.Add()
			go func(i int, item T) {
				defer swg.Done()
				r, err := fn(item)
				out[i] = r
				errs[i] = err
			}(i, item)
		}
		swg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
