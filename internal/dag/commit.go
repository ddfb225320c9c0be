package dag

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/systemshift/gitlet/internal/errors"
)

// Commit is an immutable snapshot record. Its id is the hash of its JSON
// encoding; encoding/json emits struct fields in declaration order and map
// keys sorted, so the encoding is deterministic.
type Commit struct {
	Timestamp    time.Time     `json:"timestamp"`
	Message      string        `json:"message"`
	Parent       ID            `json:"parent,omitempty"`
	SecondParent ID            `json:"second_parent,omitempty"`
	Files        map[string]ID `json:"files"`
}

// Parents returns the commit's parent ids, first parent first.
func (c *Commit) Parents() []ID {
	var parents []ID
	if c.Parent != "" {
		parents = append(parents, c.Parent)
	}
	if c.SecondParent != "" {
		parents = append(parents, c.SecondParent)
	}
	return parents
}

// IsMerge reports whether the commit has two parents.
func (c *Commit) IsMerge() bool { return c.SecondParent != "" }

// Blob returns the blob id recorded for path.
func (c *Commit) Blob(path string) (ID, bool) {
	id, ok := c.Files[path]
	return id, ok
}

// Paths returns the snapshot's paths in ascending order.
func (c *Commit) Paths() []string {
	paths := make([]string, 0, len(c.Files))
	for p := range c.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Graph stores commits by id and answers id-prefix and ancestry queries.
type Graph struct {
	objects *ObjectStore

	mu      sync.Mutex
	index   []ID // sorted; nil until first prefix lookup
	indexed bool
}

// NewGraph creates a Graph backed by objects.
func NewGraph(objects *ObjectStore) *Graph {
	return &Graph{objects: objects}
}

// Put stores c and returns its id.
func (g *Graph) Put(c *Commit) (ID, error) {
	if c.Files == nil {
		c.Files = map[string]ID{}
	}
	c.Timestamp = c.Timestamp.UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("serialize commit: %w", err)
	}
	id, err := g.objects.Put(data)
	if err != nil {
		return "", fmt.Errorf("store commit: %w", err)
	}

	g.mu.Lock()
	if g.indexed {
		i := sort.Search(len(g.index), func(i int) bool { return g.index[i] >= id })
		if i == len(g.index) || g.index[i] != id {
			g.index = append(g.index, "")
			copy(g.index[i+1:], g.index[i:])
			g.index[i] = id
		}
	}
	g.mu.Unlock()
	return id, nil
}

// PutRaw stores an already serialized commit, as received from another
// repository, and returns its id.
func (g *Graph) PutRaw(data []byte) (ID, error) {
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("unmarshal commit: %w", err)
	}
	id, err := g.objects.Put(data)
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	g.indexed = false
	g.index = nil
	g.mu.Unlock()
	return id, nil
}

// Raw returns the serialized form of a commit.
func (g *Graph) Raw(id ID) ([]byte, error) {
	data, err := g.objects.Get(id)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrObjectNotFound) {
			return nil, errors.New(errors.ErrCommitNotFound, string(id), "No commit with that id exists.")
		}
		return nil, err
	}
	return data, nil
}

// Get reads and unmarshals a commit by its full id.
func (g *Graph) Get(id ID) (*Commit, error) {
	data, err := g.Raw(id)
	if err != nil {
		return nil, err
	}
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal commit %s: %w", id.Short(12), err)
	}
	if c.Files == nil {
		c.Files = map[string]ID{}
	}
	return &c, nil
}

// Has checks if a commit exists.
func (g *Graph) Has(id ID) bool {
	return g.objects.Has(id)
}

// Len returns the number of stored commits.
func (g *Graph) Len() (int, error) {
	return g.objects.Len()
}

// IDs returns every stored commit id in ascending order.
func (g *Graph) IDs() ([]ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadIndexLocked(); err != nil {
		return nil, err
	}
	out := make([]ID, len(g.index))
	copy(out, g.index)
	return out, nil
}

func (g *Graph) loadIndexLocked() error {
	if g.indexed {
		return nil
	}
	ids, err := g.objects.List()
	if err != nil {
		return err
	}
	g.index = ids
	g.indexed = true
	return nil
}

// Resolve finds the commit named by a full id or an abbreviation of at least
// MinPrefixLen characters. An abbreviation matching more than one commit
// fails with ErrAmbiguousCommitID.
func (g *Graph) Resolve(idOrPrefix string) (ID, *Commit, error) {
	s := strings.ToLower(strings.TrimSpace(idOrPrefix))
	notFound := errors.New(errors.ErrCommitNotFound, idOrPrefix, "No commit with that id exists.")

	if len(s) == IDLen {
		c, err := g.Get(ID(s))
		if err != nil {
			return "", nil, err
		}
		return ID(s), c, nil
	}
	if len(s) < MinPrefixLen || len(s) > IDLen {
		return "", nil, notFound
	}

	g.mu.Lock()
	if err := g.loadIndexLocked(); err != nil {
		g.mu.Unlock()
		return "", nil, err
	}
	i := sort.Search(len(g.index), func(i int) bool { return string(g.index[i]) >= s })
	var matches []ID
	for j := i; j < len(g.index) && strings.HasPrefix(string(g.index[j]), s); j++ {
		matches = append(matches, g.index[j])
		if len(matches) > 1 {
			break
		}
	}
	g.mu.Unlock()

	switch len(matches) {
	case 0:
		return "", nil, notFound
	case 1:
		c, err := g.Get(matches[0])
		if err != nil {
			return "", nil, err
		}
		return matches[0], c, nil
	default:
		return "", nil, errors.Newf(errors.ErrAmbiguousCommitID, idOrPrefix,
			"Commit id %s is ambiguous.", idOrPrefix)
	}
}

// SkipParents, returned from a WalkFunc, stops the walk from descending into
// the current commit's parents.
var SkipParents = stderrors.New("skip parents")

// StopWalk, returned from a WalkFunc, ends the walk without error.
var StopWalk = stderrors.New("stop walk")

// WalkFunc is called once per reachable commit. depth is the number of
// parent edges from the start commit along the shortest path.
type WalkFunc func(id ID, c *Commit, depth int) error

// Walk visits start and its ancestors breadth-first. Each commit is visited
// once, at its shallowest depth; among commits at the same depth, those
// reached through a first parent come before those reached through a second
// parent.
func (g *Graph) Walk(start ID, fn WalkFunc) error {
	type item struct {
		id    ID
		depth int
	}
	visited := map[ID]struct{}{start: {}}
	queue := []item{{start, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		c, err := g.Get(cur.id)
		if err != nil {
			return err
		}
		switch err := fn(cur.id, c, cur.depth); err {
		case nil:
		case SkipParents:
			continue
		case StopWalk:
			return nil
		default:
			return err
		}

		for _, p := range c.Parents() {
			if _, seen := visited[p]; seen {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, item{p, cur.depth + 1})
		}
	}
	return nil
}

// Ancestors returns id and every commit reachable from it through parent
// and second-parent edges.
func (g *Graph) Ancestors(id ID) (map[ID]struct{}, error) {
	set := make(map[ID]struct{})
	err := g.Walk(id, func(id ID, _ *Commit, _ int) error {
		set[id] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// IsAncestor reports whether ancestor is reachable from descendant
// (a commit is its own ancestor).
func (g *Graph) IsAncestor(ancestor, descendant ID) (bool, error) {
	found := false
	err := g.Walk(descendant, func(id ID, _ *Commit, _ int) error {
		if id == ancestor {
			found = true
			return StopWalk
		}
		return nil
	})
	return found, err
}
