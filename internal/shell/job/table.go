package job

import "sort"

// Table owns every active Job, keyed by JID. A Job is removed from the
// Table the moment its Status becomes Done. While a Job is in the Table
// its JID is unique; ids are not reused until the Job is reaped out.
//
// podsh runs its Reaper synchronously at the top of the REPL loop rather
// than from a SIGCHLD handler, so Table needs no internal locking — there
// is never a concurrent mutator.
type Table struct {
	jobs map[int]*Job
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{jobs: make(map[int]*Job)}
}

// Insert adds j to the Table, keyed by j.JID.
func (t *Table) Insert(j *Job) {
	j.prevStatus = j.Status()
	t.jobs[j.JID] = j
}

// Get returns the Job with the given jid, if still present.
func (t *Table) Get(jid int) (*Job, bool) {
	j, ok := t.jobs[jid]
	return j, ok
}

// Remove deletes the Job with the given jid from the Table.
func (t *Table) Remove(jid int) {
	delete(t.jobs, jid)
}

// List returns every live Job, ordered by ascending JID (a stable order
// for the "jobs" built-in's listing).
func (t *Table) List() []*Job {
	out := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].JID < out[k].JID })
	return out
}

// Len reports the number of live Jobs.
func (t *Table) Len() int { return len(t.jobs) }
