package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
	snapshot "github.com/swsaga/progression-api/internal/repositories/snapshot"
	"github.com/swsaga/progression-api/internal/testutils"
)

type SnapshotRepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    snapshot.Repository
	cleanup func()
}

func TestSnapshotRepositorySuite(t *testing.T) {
	suite.Run(t, new(SnapshotRepositoryTestSuite))
}

func (s *SnapshotRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()
	s.repo = snapshot.NewRedis(client)
}

func (s *SnapshotRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *SnapshotRepositoryTestSuite) TestCreateGetRoundTrip() {
	snap := &saga.Snapshot{
		ID:          "snap_1",
		CharacterID: "char_1",
		Label:       "pre-finalize",
		TakenAt:     1700000000,
		Data: saga.CharacterData{
			ID:    "char_1",
			Level: 1,
			Feats: []string{"Toughness"},
		},
	}

	_, err := s.repo.Create(s.ctx, snapshot.CreateInput{Snapshot: snap})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, snapshot.GetInput{ID: "snap_1"})
	s.Require().NoError(err)
	s.Equal("char_1", got.Snapshot.CharacterID)
	s.Equal("pre-finalize", got.Snapshot.Label)
	s.Equal([]string{"Toughness"}, got.Snapshot.Data.Feats)
}

func (s *SnapshotRepositoryTestSuite) TestGetMissingIsNotFound() {
	_, err := s.repo.Get(s.ctx, snapshot.GetInput{ID: "snap_none"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *SnapshotRepositoryTestSuite) TestCreateWithoutIDRejected() {
	_, err := s.repo.Create(s.ctx, snapshot.CreateInput{Snapshot: &saga.Snapshot{CharacterID: "char_1"}})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *SnapshotRepositoryTestSuite) TestDelete() {
	snap := &saga.Snapshot{ID: "snap_1", CharacterID: "char_1"}
	_, err := s.repo.Create(s.ctx, snapshot.CreateInput{Snapshot: snap})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, snapshot.DeleteInput{ID: "snap_1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, snapshot.GetInput{ID: "snap_1"})
	s.True(errors.IsNotFound(err))
}
