package repo

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errors"
	"github.com/systemshift/gitlet/internal/logging"
)

// SyncResult reports what a push or fetch transferred.
type SyncResult struct {
	Head    dag.ID
	Commits int
	Blobs   int
}

// transfer copies the history reachable from head in src into dst. Blobs go
// first, then commits parents-first, so a commit present in dst always has
// its ancestors and files present too. Callers move branch pointers only
// after transfer returns; an interrupted transfer is resumed by running it
// again.
type transfer struct {
	src, dst    *dag.Store
	concurrency int
	log         zerolog.Logger
}

func (t *transfer) run(ctx context.Context, head dag.ID) (*SyncResult, error) {
	missing := map[dag.ID]*dag.Commit{}
	err := t.src.Commits.Walk(head, func(id dag.ID, c *dag.Commit, _ int) error {
		if t.dst.Commits.Has(id) {
			return dag.SkipParents
		}
		missing[id] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	blobs := map[dag.ID]struct{}{}
	for _, c := range missing {
		for _, id := range c.Files {
			if !t.dst.Blobs.Has(id) {
				blobs[id] = struct{}{}
			}
		}
	}

	var copied atomic.Int64
	p := pool.New().WithMaxGoroutines(t.concurrency).WithContext(ctx).WithCancelOnError()
	for id := range blobs {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := t.src.Blobs.Get(id)
			if err != nil {
				return fmt.Errorf("read blob %s: %w", id.Short(12), err)
			}
			if _, err := t.dst.Blobs.Put(data); err != nil {
				return fmt.Errorf("write blob %s: %w", id.Short(12), err)
			}
			copied.Add(1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	order := parentsFirst(missing, head)
	for _, id := range order {
		raw, err := t.src.Commits.Raw(id)
		if err != nil {
			return nil, err
		}
		if _, err := t.dst.Commits.PutRaw(raw); err != nil {
			return nil, fmt.Errorf("write commit %s: %w", id.Short(12), err)
		}
	}

	t.log.Debug().
		Str("head", head.Short(12)).
		Int("commits", len(order)).
		Int64("blobs", copied.Load()).
		Msg("transferred")
	return &SyncResult{Head: head, Commits: len(order), Blobs: int(copied.Load())}, nil
}

// parentsFirst orders the commits in set so every commit follows its parents
// that are also in set.
func parentsFirst(set map[dag.ID]*dag.Commit, head dag.ID) []dag.ID {
	type frame struct {
		id       dag.ID
		expanded bool
	}
	var order []dag.ID
	done := map[dag.ID]bool{}
	stack := []frame{{id: head}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if done[f.id] {
			continue
		}
		c, ok := set[f.id]
		if !ok {
			continue
		}
		if f.expanded {
			done[f.id] = true
			order = append(order, f.id)
			continue
		}
		stack = append(stack, frame{id: f.id, expanded: true})
		parents := c.Parents()
		for i := len(parents) - 1; i >= 0; i-- {
			if !done[parents[i]] {
				stack = append(stack, frame{id: parents[i]})
			}
		}
	}
	return order
}

func (r *Repository) newTransfer(src, dst *dag.Store) *transfer {
	return &transfer{
		src:         src,
		dst:         dst,
		concurrency: r.opts.Concurrency,
		log:         logging.GetLogger("sync"),
	}
}

// Push sends the active branch to branch on the named remote. The remote
// branch must be an ancestor of the local head; nothing is written otherwise.
func (r *Repository) Push(ctx context.Context, remoteName, branch string) (*SyncResult, error) {
	remote, err := r.openRemote(remoteName)
	if err != nil {
		return nil, err
	}
	defer remote.Close()

	_, headID, _, err := r.Head()
	if err != nil {
		return nil, err
	}

	remoteHead, err := remote.Refs.Get(branch)
	switch {
	case err == nil:
		ok, err := r.store.Commits.IsAncestor(remoteHead, headID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New(errors.ErrRemoteAhead, branch, "Please pull down remote changes before pushing.")
		}
	case errors.IsErrorCode(err, errors.ErrBranchNotFound):
	default:
		return nil, err
	}

	res, err := r.newTransfer(r.store, remote).run(ctx, headID)
	if err != nil {
		return nil, err
	}
	if err := remote.Refs.Set(branch, headID); err != nil {
		return nil, err
	}
	r.log.Info().Str("remote", remoteName).Str("branch", branch).Str("head", headID.Short(12)).Msg("pushed")
	return res, nil
}

// Fetch copies branch from the named remote and points the tracking branch
// remote/branch at it. The working directory and active branch are untouched.
func (r *Repository) Fetch(ctx context.Context, remoteName, branch string) (*SyncResult, error) {
	remote, err := r.openRemote(remoteName)
	if err != nil {
		return nil, err
	}
	defer remote.Close()

	remoteHead, err := remote.Refs.Get(branch)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrBranchNotFound) {
			return nil, errors.New(errors.ErrRemoteBranchNotFound, branch, "That remote does not have that branch.")
		}
		return nil, err
	}

	res, err := r.newTransfer(remote, r.store).run(ctx, remoteHead)
	if err != nil {
		return nil, err
	}
	tracking := TrackingBranch(remoteName, branch)
	if err := r.store.Refs.Set(tracking, remoteHead); err != nil {
		return nil, err
	}
	r.log.Info().Str("branch", tracking).Str("head", remoteHead.Short(12)).Msg("fetched")
	return res, nil
}

// Pull fetches branch from the named remote and merges the tracking branch
// into the active branch.
func (r *Repository) Pull(ctx context.Context, remoteName, branch string) (*MergeResult, error) {
	if _, err := r.Fetch(ctx, remoteName, branch); err != nil {
		return nil, err
	}
	return r.Merge(TrackingBranch(remoteName, branch))
}
