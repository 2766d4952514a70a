package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/domindex/catalog"
	"github.com/viant/domindex/index"
	"github.com/viant/domindex/index/kdtree"
	"github.com/viant/domindex/snapshot"
)

// Service answers nearest-dominator queries for a catalog.
type Service struct {
	catalog   *catalog.Store
	snapshots snapshot.Store
	name      string
	logger    *slog.Logger
	changeLog bool

	mu      sync.RWMutex
	tree    *kdtree.Tree
	lastSeq int64
}

// Option configures a Service.
type Option func(*Service)

// WithSnapshotName sets the snapshot name. It defaults to the catalog table
// name, which is also where dom_admin persists its rebuilds.
func WithSnapshotName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChangeLog enables Sync against the catalog change log. The catalog
// must be SQLite.
func WithChangeLog(enabled bool) Option {
	return func(s *Service) { s.changeLog = enabled }
}

// New creates a Service. Call Load before serving queries; until then every
// query returns no match.
func New(ctx context.Context, cat *catalog.Store, snapshots snapshot.Store, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("matcher: catalog is nil")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("matcher: snapshot store is nil")
	}
	s := &Service{
		catalog:   cat,
		snapshots: snapshots,
		name:      cat.Table(),
		logger:    slog.Default(),
		tree:      kdtree.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.changeLog {
		if err := cat.EnsureChangeLog(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load restores the tree from its snapshot. With the change log enabled, the
// changes recorded after the snapshot was taken are replayed onto it. When no
// snapshot exists, it cannot be decoded, or it still disagrees with the
// catalog size, the tree is rebuilt from the catalog and persisted.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, seq, err := ReadSnapshot(ctx, s.snapshots, s.name)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		s.logger.Info("snapshot_missing", "name", s.name)
		return s.rebuild(ctx)
	case errors.Is(err, index.ErrMalformedInput):
		s.logger.Warn("snapshot_corrupt", "name", s.name, "err", err)
		return s.rebuild(ctx)
	case err != nil:
		return fmt.Errorf("matcher: load snapshot %s: %w", s.name, err)
	}
	s.tree, s.lastSeq = tree, seq
	if s.changeLog {
		last, err := s.catalog.LastSeq(ctx)
		if err != nil {
			return err
		}
		if seq > last {
			s.logger.Warn("snapshot_ahead", "name", s.name, "seq", seq, "log", last)
			return s.rebuild(ctx)
		}
		stats, err := s.replay(ctx)
		if err != nil {
			return err
		}
		if stats.Rebuilt {
			return nil
		}
	}
	count, err := s.catalog.Count(ctx)
	if err != nil {
		return err
	}
	if count != s.tree.Len() {
		s.logger.Warn("snapshot_stale", "name", s.name, "leaves", s.tree.Len(), "catalog", count)
		return s.rebuild(ctx)
	}
	s.logger.Info("snapshot_loaded", "name", s.name, "leaves", s.tree.Len(), "seq", s.lastSeq)
	return nil
}

// Rebuild builds a fresh tree from the catalog and persists it.
func (s *Service) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuild(ctx)
}

func (s *Service) rebuild(ctx context.Context) error {
	// read the log position first so changes made while reading are replayed
	if err := s.markSynced(ctx); err != nil {
		return err
	}
	entries, err := s.catalog.Entries(ctx)
	if err != nil {
		return fmt.Errorf("matcher: read catalog: %w", err)
	}
	tree := kdtree.New()
	if len(entries) > 0 {
		if err := tree.Build(entries); err != nil {
			return fmt.Errorf("matcher: %w", err)
		}
	}
	s.tree = tree
	s.logger.Info("tree_built", "name", s.name, "leaves", tree.Len(), "height", tree.Height())
	return s.persist(ctx)
}

// Match returns the id of the nearest cataloged point dominated by query.
func (s *Service) Match(query index.Point) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tree.Search(query)
	s.logger.Debug("match", "query", query.String(), "id", id, "found", ok)
	return id, ok
}

// Len returns the number of points in the tree.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// Retire removes id from the catalog and the tree and persists the tree.
func (s *Service) Retire(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.catalog.Remove(ctx, id); err != nil {
		return fmt.Errorf("matcher: retire %q: %w", id, err)
	}
	if err := s.tree.Remove(id); err != nil {
		if !errors.Is(err, index.ErrNotFound) && !errors.Is(err, index.ErrEmptyTree) {
			return fmt.Errorf("matcher: retire %q: %w", id, err)
		}
		s.logger.Warn("retire_not_indexed", "id", id)
	}
	s.logger.Info("retired", "id", id, "leaves", s.tree.Len())
	return s.persist(ctx)
}

// SyncStats reports what Sync applied.
type SyncStats struct {
	Changes int
	Removed int
	Rebuilt bool
}

// Sync applies catalog changes recorded after the seq the tree reflects.
// Deletions are removed from the tree in place; insertions and updates cannot
// be added to a built tree, so they trigger a rebuild.
func (s *Service) Sync(ctx context.Context) (SyncStats, error) {
	if !s.changeLog {
		return SyncStats{}, fmt.Errorf("matcher: change log disabled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replay(ctx)
}

// replay applies the change log after lastSeq and persists the result
// together with the new seq.
func (s *Service) replay(ctx context.Context) (SyncStats, error) {
	var stats SyncStats
	changes, err := s.catalog.Changes(ctx, s.lastSeq, 0)
	if err != nil {
		return stats, err
	}
	stats.Changes = len(changes)
	if len(changes) == 0 {
		return stats, nil
	}
	for _, c := range changes {
		if c.Op != catalog.OpDelete {
			stats.Rebuilt = true
			s.logger.Info("sync_rebuild", "op", c.Op, "id", c.PointID, "seq", c.Seq)
			return stats, s.rebuild(ctx)
		}
	}
	for _, c := range changes {
		if !s.tree.Contains(c.PointID) {
			continue
		}
		if err := s.tree.Remove(c.PointID); err != nil {
			return stats, err
		}
		stats.Removed++
	}
	s.lastSeq = changes[len(changes)-1].Seq
	s.logger.Info("synced", "changes", stats.Changes, "removed", stats.Removed, "seq", s.lastSeq)
	return stats, s.persist(ctx)
}

func (s *Service) markSynced(ctx context.Context) error {
	if !s.changeLog {
		return nil
	}
	seq, err := s.catalog.LastSeq(ctx)
	if err != nil {
		return err
	}
	s.lastSeq = seq
	return nil
}

func (s *Service) persist(ctx context.Context) error {
	data, err := encodeSnapshot(s.lastSeq, s.tree)
	if err != nil {
		return err
	}
	if err := s.snapshots.Save(ctx, s.name, data); err != nil {
		return fmt.Errorf("matcher: save snapshot %s: %w", s.name, err)
	}
	s.logger.Debug("snapshot_saved", "name", s.name, "bytes", len(data), "seq", s.lastSeq)
	return nil
}
