package pool

// Job is a deferred unit of work with no inputs and no result.
// A job is run at most once, on exactly one worker.
type Job interface {
	Run()
}

// JobFunc adapts an ordinary function to a Job.
type JobFunc func()

// Run calls f().
func (f JobFunc) Run() { f() }
