package matcher

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/viant/domindex/catalog"
	"github.com/viant/domindex/engine"
	"github.com/viant/domindex/index"
	"github.com/viant/domindex/index/kdtree"
	"github.com/viant/domindex/internal/logger"
	"github.com/viant/domindex/snapshot"
)

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	db        *sql.DB
	catalog   *catalog.Store
	snapshots *snapshot.SQLiteStore
	logs      bytes.Buffer
}

func (s *ServiceSuite) SetupTest() {
	require := s.Require()
	s.ctx = context.Background()
	db, err := engine.Open(filepath.Join(s.T().TempDir(), "matcher.sqlite"))
	require.NoError(err)
	s.db = db
	s.catalog, err = catalog.NewStore(s.ctx, db)
	require.NoError(err)
	s.snapshots, err = snapshot.NewSQLiteStore(s.ctx, db)
	require.NoError(err)
	require.NoError(s.catalog.AddPoints(s.ctx, []index.Entry{
		{ID: "1", Point: index.Point{4, 6}},
		{ID: "2", Point: index.Point{8, 4}},
		{ID: "3", Point: index.Point{10, 5}},
		{ID: "4", Point: index.Point{12, 8}},
	}))
	s.logs.Reset()
}

func (s *ServiceSuite) TearDownTest() {
	s.db.Close()
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	opts = append([]Option{WithLogger(logger.New(&s.logs, "debug", "text"))}, opts...)
	svc, err := New(s.ctx, s.catalog, s.snapshots, opts...)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) TestMatchBeforeLoad() {
	svc := s.newService()
	_, ok := svc.Match(index.Point{2, 8})
	s.False(ok)
	s.Zero(svc.Len())
}

func (s *ServiceSuite) TestLoadBuildsAndPersists() {
	require := s.Require()
	svc := s.newService()
	require.NoError(svc.Load(s.ctx))
	require.Equal(4, svc.Len())
	require.Contains(s.logs.String(), "snapshot_missing")

	id, ok := svc.Match(index.Point{2, 8})
	require.True(ok)
	require.Equal("1", id)
	id, ok = svc.Match(index.Point{7, 4.2})
	require.True(ok)
	require.Equal("2", id)
	_, ok = svc.Match(index.Point{10, 2})
	require.False(ok)

	tree, seq, err := ReadSnapshot(s.ctx, s.snapshots, catalog.DefaultTable)
	require.NoError(err)
	require.Equal(4, tree.Len())
	require.Zero(seq)
}

func (s *ServiceSuite) TestRetireSurvivesReload() {
	require := s.Require()
	svc := s.newService(WithSnapshotName("reference"))
	require.NoError(svc.Load(s.ctx))
	require.NoError(svc.Retire(s.ctx, "2"))
	_, ok := svc.Match(index.Point{7, 4.2})
	require.False(ok)

	require.ErrorIs(svc.Retire(s.ctx, "2"), index.ErrNotFound)

	reloaded := s.newService(WithSnapshotName("reference"))
	require.NoError(reloaded.Load(s.ctx))
	require.Contains(s.logs.String(), "snapshot_loaded")
	require.Equal(3, reloaded.Len())
	_, ok = reloaded.Match(index.Point{7, 4.2})
	require.False(ok)
	id, ok := reloaded.Match(index.Point{2, 8})
	require.True(ok)
	require.Equal("1", id)
}

func (s *ServiceSuite) TestLoadRebuildsStaleSnapshot() {
	require := s.Require()
	svc := s.newService()
	require.NoError(svc.Load(s.ctx))
	require.NoError(s.catalog.AddPoints(s.ctx, []index.Entry{{ID: "5", Point: index.Point{3, 1}}}))

	reloaded := s.newService()
	require.NoError(reloaded.Load(s.ctx))
	require.Contains(s.logs.String(), "snapshot_stale")
	require.Equal(5, reloaded.Len())
	id, ok := reloaded.Match(index.Point{2, 2})
	require.True(ok)
	require.Equal("5", id)
}

func (s *ServiceSuite) TestLoadRebuildsCorruptSnapshot() {
	require := s.Require()
	require.NoError(s.snapshots.Save(s.ctx, catalog.DefaultTable, []byte("garbage")))
	svc := s.newService()
	require.NoError(svc.Load(s.ctx))
	require.Contains(s.logs.String(), "snapshot_corrupt")
	require.Equal(4, svc.Len())
}

func (s *ServiceSuite) TestSyncAppliesDeletes() {
	require := s.Require()
	svc := s.newService(WithChangeLog(true))
	require.NoError(svc.Load(s.ctx))

	stats, err := svc.Sync(s.ctx)
	require.NoError(err)
	require.Zero(stats.Changes, "changes before Load are not replayed")

	require.NoError(s.catalog.Remove(s.ctx, "2"))
	require.NoError(svc.Retire(s.ctx, "4"))
	stats, err = svc.Sync(s.ctx)
	require.NoError(err)
	require.Equal(SyncStats{Changes: 2, Removed: 1}, stats)
	require.Equal(2, svc.Len())
	_, ok := svc.Match(index.Point{7, 4.2})
	require.False(ok)

	stats, err = svc.Sync(s.ctx)
	require.NoError(err)
	require.Zero(stats.Changes)
}

func (s *ServiceSuite) TestSyncRebuildsOnInsert() {
	require := s.Require()
	svc := s.newService(WithChangeLog(true))
	require.NoError(svc.Load(s.ctx))
	require.NoError(s.catalog.AddPoints(s.ctx, []index.Entry{{ID: "5", Point: index.Point{3, 1}}}))

	stats, err := svc.Sync(s.ctx)
	require.NoError(err)
	require.True(stats.Rebuilt)
	require.Equal(5, svc.Len())
	id, ok := svc.Match(index.Point{2, 2})
	require.True(ok)
	require.Equal("5", id)

	stats, err = svc.Sync(s.ctx)
	require.NoError(err)
	require.Zero(stats.Changes)
}

func (s *ServiceSuite) TestLoadReplaysChangesFromAnotherProcess() {
	require := s.Require()
	first := s.newService(WithChangeLog(true))
	require.NoError(first.Load(s.ctx))

	// the count stays at four, so only the change log reveals the edits
	require.NoError(s.catalog.Remove(s.ctx, "1"))
	require.NoError(s.catalog.AddPoints(s.ctx, []index.Entry{{ID: "5", Point: index.Point{3, 1}}}))

	second := s.newService(WithChangeLog(true))
	require.NoError(second.Load(s.ctx))
	require.Contains(s.logs.String(), "sync_rebuild")
	require.Equal(4, second.Len())
	id, ok := second.Match(index.Point{2, 8})
	require.True(ok)
	require.Equal("5", id)

	stats, err := second.Sync(s.ctx)
	require.NoError(err)
	require.Zero(stats.Changes)
	_, seq, err := ReadSnapshot(s.ctx, s.snapshots, catalog.DefaultTable)
	require.NoError(err)
	last, err := s.catalog.LastSeq(s.ctx)
	require.NoError(err)
	require.Equal(last, seq)
}

func (s *ServiceSuite) TestLoadReplaysDeletesInPlace() {
	require := s.Require()
	first := s.newService(WithChangeLog(true))
	require.NoError(first.Load(s.ctx))
	require.NoError(s.catalog.Remove(s.ctx, "1"))

	s.logs.Reset()
	second := s.newService(WithChangeLog(true))
	require.NoError(second.Load(s.ctx))
	require.Contains(s.logs.String(), "synced")
	require.NotContains(s.logs.String(), "tree_built")
	require.Equal(3, second.Len())
	id, ok := second.Match(index.Point{2, 8})
	require.True(ok)
	require.Equal("2", id)

	s.logs.Reset()
	third := s.newService(WithChangeLog(true))
	require.NoError(third.Load(s.ctx))
	require.Contains(s.logs.String(), "snapshot_loaded")
	require.NotContains(s.logs.String(), "tree_built")
	require.Equal(3, third.Len())
	id, ok = third.Match(index.Point{2, 8})
	require.True(ok)
	require.Equal("2", id)
}

func (s *ServiceSuite) TestLoadRebuildsSnapshotAheadOfLog() {
	require := s.Require()
	svc := s.newService(WithChangeLog(true))
	require.NoError(svc.Load(s.ctx))
	tree, _, err := ReadSnapshot(s.ctx, s.snapshots, catalog.DefaultTable)
	require.NoError(err)
	data, err := encodeSnapshot(99, tree)
	require.NoError(err)
	require.NoError(s.snapshots.Save(s.ctx, catalog.DefaultTable, data))

	reloaded := s.newService(WithChangeLog(true))
	require.NoError(reloaded.Load(s.ctx))
	require.Contains(s.logs.String(), "snapshot_ahead")
	_, seq, err := ReadSnapshot(s.ctx, s.snapshots, catalog.DefaultTable)
	require.NoError(err)
	require.Zero(seq)
}

func (s *ServiceSuite) TestSyncDisabled() {
	svc := s.newService()
	_, err := svc.Sync(s.ctx)
	s.Error(err)
}

func (s *ServiceSuite) TestEmptyCatalog() {
	require := s.Require()
	for _, id := range []string{"1", "2", "3", "4"} {
		require.NoError(s.catalog.Remove(s.ctx, id))
	}
	svc := s.newService()
	require.NoError(svc.Load(s.ctx))
	require.Zero(svc.Len())
	_, ok := svc.Match(index.Point{0, 100})
	require.False(ok)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func TestSnapshotEnvelope(t *testing.T) {
	tree := kdtree.New()
	require.NoError(t, tree.Build([]index.Entry{{ID: "a", Point: index.Point{1, 2}}, {ID: "b", Point: index.Point{3, 0}}}))
	data, err := encodeSnapshot(7, tree)
	require.NoError(t, err)
	seq, decoded, err := decodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, int64(7), seq)
	require.ElementsMatch(t, tree.IDs(), decoded.IDs())

	raw, err := tree.MarshalBinary()
	require.NoError(t, err)
	for _, bad := range [][]byte{nil, []byte("DOMS"), raw, data[:len(data)-1]} {
		_, _, err := decodeSnapshot(bad)
		require.ErrorIs(t, err, index.ErrMalformedInput)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	require.Error(t, err)
}
