package pipeline

// Logger is an optional logging interface a caller can supply so Run's
// stage-by-stage progress integrates with any logging framework, the
// same shape as bootloader.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// runOptions holds the cross-cutting runtime knobs that aren't part of
// the parsed CLI surface captured by Config.
type runOptions struct {
	logger      Logger
	parallelism int
}

func defaultRunOptions() runOptions {
	return runOptions{logger: nopLogger{}, parallelism: 1}
}

// Option configures a Run call.
type Option func(*runOptions)

// WithLogger sets the logger Run reports stage progress to.
//
// Example:
//
//	pipeline.Run(cfg, randomFill, pipeline.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(o *runOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithParallelism bounds the data-parallel fan-out Run uses inside
// operations that support it (currently swap). Values <= 1 run
// sequentially.
func WithParallelism(n int) Option {
	return func(o *runOptions) {
		if n > 0 {
			o.parallelism = n
		}
	}
}
