package object

// Journal is a bounded chronological history of stack snapshots. It is a
// fixed-capacity ring buffer: once full, recording evicts the oldest
// entry, so the bound is an invariant of the type.
type Journal struct {
	entries [][]Expr
	head    int // index of the oldest entry
	count   int
}

const DefaultJournalLength = 20

func NewJournal(maxLen int) *Journal {
	if maxLen <= 0 {
		maxLen = DefaultJournalLength
	}
	return &Journal{entries: make([][]Expr, maxLen)}
}

// Record appends a copy of the stack's current contents.
func (j *Journal) Record(stack []Expr) {
	snapshot := make([]Expr, len(stack))
	copy(snapshot, stack)

	if j.count < len(j.entries) {
		j.entries[(j.head+j.count)%len(j.entries)] = snapshot
		j.count++
		return
	}
	j.entries[j.head] = snapshot
	j.head = (j.head + 1) % len(j.entries)
}

func (j *Journal) Len() int { return j.count }

func (j *Journal) Cap() int { return len(j.entries) }

// Entries returns the retained snapshots, oldest first.
func (j *Journal) Entries() [][]Expr {
	out := make([][]Expr, 0, j.count)
	for i := 0; i < j.count; i++ {
		out = append(out, j.entries[(j.head+i)%len(j.entries)])
	}
	return out
}
