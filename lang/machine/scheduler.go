package machine

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"
)

// Scheduler holds the set of running background jobs (spec §4.5 "Job
// scheduler"), grounded on original_source/pushvm/pushvm.py's
// VM.jobs/next_jid/start_job/poll_jobs. golang.org/x/exp/slices sorts job
// IDs before iterating so "jobs"/Poll output is deterministic across runs —
// a plain Go map would otherwise randomize iteration order, which the
// Python dict-backed original never had to worry about.
type Scheduler struct {
	jobs   map[int]*Job
	nextID int
	out    io.Writer
}

// NewScheduler returns an empty Scheduler. out receives the "[n] name
// (done)"/"(error: ...)" lines Poll prints as jobs finish; if nil,
// Poll prints nothing (the caller is expected to inspect Jobs() instead).
func NewScheduler(out io.Writer) *Scheduler {
	return &Scheduler{jobs: make(map[int]*Job), nextID: 1, out: out}
}

// StartJob registers prog as a new background job named name, cloning
// parent's variable table so the job starts with the shell's current
// environment, and returns its job ID.
func (s *Scheduler) StartJob(parent *VM, prog *Program, name string) int {
	jvm := parent.CloneForJob()
	jvm.Load(prog)

	id := s.nextID
	s.nextID++
	s.jobs[id] = &Job{ID: id, Name: name, VM: jvm}
	return id
}

// Poll advances every running job by up to steps instructions, removing any
// that finish and reporting them to out.
func (s *Scheduler) Poll(steps int) {
	if len(s.jobs) == 0 {
		return
	}
	ids := make([]int, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		job := s.jobs[id]
		job.step(steps)
		if job.Done {
			s.report(job)
			delete(s.jobs, id)
		}
	}
}

func (s *Scheduler) report(job *Job) {
	if s.out == nil {
		return
	}
	if job.Err != nil {
		fmt.Fprintf(s.out, "[%d] %s (error: %v)\n", job.ID, job.Name, job.Err)
	} else {
		fmt.Fprintf(s.out, "[%d] %s (done)\n", job.ID, job.Name)
	}
}

// Lookup returns the job with the given ID, or nil if no such job is
// running.
func (s *Scheduler) Lookup(id int) *Job { return s.jobs[id] }

// Kill marks the job with the given ID as done without running it to
// completion — exactly original_source's cmd_kill: no cleanup hook is
// invoked, since spec.md's Open Questions leave that undefined and
// inventing one here would be scope creep.
func (s *Scheduler) Kill(id int) bool {
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	job.Done = true
	delete(s.jobs, id)
	return true
}

// Jobs returns the IDs of all currently running jobs, sorted ascending.
func (s *Scheduler) Jobs() []int {
	ids := make([]int, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// JobName returns the name of the job with the given ID, or "" if unknown.
func (s *Scheduler) JobName(id int) string {
	if j, ok := s.jobs[id]; ok {
		return j.Name
	}
	return ""
}

// RunToCompletion steps the job with the given ID until it finishes,
// removing it from the scheduler and returning whether it errored —
// grounded on original_source/pushvm/pushvm.py's cmd_fg.
func (s *Scheduler) RunToCompletion(id int) (err error, found bool) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	for !job.Done {
		job.step(200)
	}
	delete(s.jobs, id)
	return job.Err, true
}
