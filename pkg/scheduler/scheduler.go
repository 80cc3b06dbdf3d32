// Package scheduler runs periodic tasks cooperatively from a single main loop.
//
// Deadlines are compared against a free-running millisecond counter that may
// wrap; a task is due once the counter is strictly past its deadline.
package scheduler

import "context"

// Clock returns the current time in milliseconds.
type Clock interface {
	Millis() uint32
}

// Idler blocks until something may have changed, typically the next interrupt.
type Idler interface {
	Wait()
}

// Rearm selects how a task's next deadline is computed after it fires.
type Rearm int

const (
	// FixedRate advances the deadline by exactly one period. Lateness is
	// never corrected, so a task that was delayed fires again sooner.
	FixedRate Rearm = iota
	// FromNow sets the deadline one period after the time the task fired.
	FromNow
)

func (r Rearm) String() string {
	switch r {
	case FixedRate:
		return "fixed-rate"
	case FromNow:
		return "from-now"
	default:
		return "unknown"
	}
}

// Task is a unit of periodic work.
type Task struct {
	Name   string
	Period uint32 // milliseconds
	Rearm  Rearm
	Run    func(now uint32)
}

type entry struct {
	task     Task
	deadline uint32
	fired    uint32
	late     uint32
}

// Scheduler holds tasks in registration order.
type Scheduler struct {
	clock Clock
	tasks []*entry
}

// New creates an empty scheduler.
func New(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Add registers a task. Fixed-rate tasks first fire one period after they
// are added; from-now tasks are due on the first poll.
func (s *Scheduler) Add(t Task) {
	now := s.clock.Millis()
	e := &entry{task: t}
	switch t.Rearm {
	case FixedRate:
		e.deadline = now + t.Period
	default:
		e.deadline = now - 1
	}
	s.tasks = append(s.tasks, e)
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Poll runs every due task once, in registration order. The clock is read
// once per task so work done by earlier tasks is visible to later ones. It
// returns the number of tasks that ran.
func (s *Scheduler) Poll() int {
	ran := 0
	for _, e := range s.tasks {
		now := s.clock.Millis()
		if !after(now, e.deadline) {
			continue
		}
		if e.task.Period > 0 && now-e.deadline >= e.task.Period {
			e.late++
		}
		switch e.task.Rearm {
		case FixedRate:
			e.deadline += e.task.Period
		default:
			e.deadline = now + e.task.Period
		}
		e.fired++
		if e.task.Run != nil {
			e.task.Run(now)
		}
		ran++
	}
	return ran
}

// Run polls and waits on idler until ctx is done.
func (s *Scheduler) Run(ctx context.Context, idler Idler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Poll()
		idler.Wait()
	}
}

// Stats describes how often a task has fired.
type Stats struct {
	Name     string
	Fired    uint32
	Late     uint32 // firings overrunning the deadline by at least a period
	Deadline uint32
}

// Stats returns per-task counters in registration order.
func (s *Scheduler) Stats() []Stats {
	out := make([]Stats, len(s.tasks))
	for i, e := range s.tasks {
		out[i] = Stats{Name: e.task.Name, Fired: e.fired, Late: e.late, Deadline: e.deadline}
	}
	return out
}

// Late returns the total of late firings across all tasks.
func (s *Scheduler) Late() uint32 {
	var n uint32
	for _, e := range s.tasks {
		n += e.late
	}
	return n
}

// after reports whether a is strictly later than b on a wrapping counter.
func after(a, b uint32) bool {
	return int32(a-b) > 0
}
