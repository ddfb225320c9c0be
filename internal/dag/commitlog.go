package dag

// LogEntry is a commit paired with its id.
type LogEntry struct {
	ID     ID
	Commit *Commit
}

// Log walks the first-parent chain from head, returning up to n commits
// (newest first). n <= 0 means no limit.
func (g *Graph) Log(head ID, n int) ([]LogEntry, error) {
	var entries []LogEntry
	current := head
	for current != "" && (n <= 0 || len(entries) < n) {
		c, err := g.Get(current)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LogEntry{ID: current, Commit: c})
		current = c.Parent
	}
	return entries, nil
}

// All returns every stored commit in id order.
func (g *Graph) All() ([]LogEntry, error) {
	ids, err := g.IDs()
	if err != nil {
		return nil, err
	}
	entries := make([]LogEntry, 0, len(ids))
	for _, id := range ids {
		c, err := g.Get(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LogEntry{ID: id, Commit: c})
	}
	return entries, nil
}

// FindByMessage returns the ids of all commits whose message is exactly msg.
func (g *Graph) FindByMessage(msg string) ([]ID, error) {
	entries, err := g.All()
	if err != nil {
		return nil, err
	}
	var ids []ID
	for _, e := range entries {
		if e.Commit.Message == msg {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}
