package character_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
	"github.com/swsaga/progression-api/internal/pkg/clock"
	character "github.com/swsaga/progression-api/internal/repositories/character"
	"github.com/swsaga/progression-api/internal/repositories/subrecord"
	"github.com/swsaga/progression-api/internal/testutils"
)

const (
	testCharID   = "char_123"
	testPlayerID = "player_456"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	ctx      context.Context
	repo     character.Repository
	subStore subrecord.Store
	cleanup  func()
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()

	repo, err := character.NewRedis(&character.RedisConfig{
		Client: client,
		Clock:  clock.NewFixed(time.Unix(1700000000, 0)),
	})
	s.Require().NoError(err)
	s.repo = repo
	s.subStore = subrecord.NewRedis(client)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) testCharacter() *saga.CharacterData {
	return &saga.CharacterData{
		ID:       testCharID,
		PlayerID: testPlayerID,
		Name:     "Dara Venn",
		Level:    1,
		ClassLevels: []saga.ClassLevel{
			{ClassID: "soldier", LevelInClass: 1},
		},
		Feats: []string{"Point-Blank Shot"},
		MaxHP: 31,
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{CharacterData: s.testCharacter()})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
	s.Require().NoError(err)
	s.Equal("Dara Venn", got.CharacterData.Name)
	s.Equal(1, got.CharacterData.Level)
	s.Equal([]string{"Point-Blank Shot"}, got.CharacterData.Feats)
}

func (s *RedisRepositoryTestSuite) TestCreateDuplicateFails() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{CharacterData: s.testCharacter()})
	s.Require().NoError(err)

	_, err = s.repo.Create(s.ctx, character.CreateInput{CharacterData: s.testCharacter()})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetMissingIsNotFound() {
	_, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_none"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdate() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{CharacterData: s.testCharacter()})
	s.Require().NoError(err)

	updated := s.testCharacter()
	updated.MaxHP = 39
	out, err := s.repo.Update(s.ctx, character.UpdateInput{CharacterData: updated})
	s.Require().NoError(err)
	s.Equal(int64(1700000000), out.CharacterData.UpdatedAt)

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
	s.Require().NoError(err)
	s.Equal(39, got.CharacterData.MaxHP)
}

func (s *RedisRepositoryTestSuite) TestUpdateMissingIsNotFound() {
	_, err := s.repo.Update(s.ctx, character.UpdateInput{CharacterData: s.testCharacter()})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestListByPlayerID() {
	first := s.testCharacter()
	second := s.testCharacter()
	second.ID = "char_124"
	second.Name = "Kel Arden"

	_, err := s.repo.Create(s.ctx, character.CreateInput{CharacterData: first})
	s.Require().NoError(err)
	_, err = s.repo.Create(s.ctx, character.CreateInput{CharacterData: second})
	s.Require().NoError(err)

	out, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Len(out.Characters, 2)
}

func (s *RedisRepositoryTestSuite) TestApplyMutationIsVisibleAtomically() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{CharacterData: s.testCharacter()})
	s.Require().NoError(err)

	next := s.testCharacter()
	next.Level = 2
	next.MaxHP = 39
	next.Feats = append(next.Feats, "Precise Shot")

	_, err = s.repo.ApplyMutation(s.ctx, character.ApplyMutationInput{
		CharacterData: next,
		SubRecordsToCreate: []saga.SubRecord{
			{Type: saga.SubRecordFeat, Name: "Precise Shot"},
		},
	})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
	s.Require().NoError(err)
	s.Equal(2, got.CharacterData.Level)
	s.Equal(39, got.CharacterData.MaxHP)

	subs, err := s.subStore.List(s.ctx, subrecord.ListInput{CharacterID: testCharID, Type: saga.SubRecordFeat})
	s.Require().NoError(err)
	s.Contains(subs.Names, "Precise Shot")
}

func (s *RedisRepositoryTestSuite) TestApplyMutationDeletesSubRecords() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{CharacterData: s.testCharacter()})
	s.Require().NoError(err)

	_, err = s.repo.ApplyMutation(s.ctx, character.ApplyMutationInput{
		CharacterData: s.testCharacter(),
		SubRecordsToCreate: []saga.SubRecord{
			{Type: saga.SubRecordTalent, Name: "Armored Defense"},
		},
	})
	s.Require().NoError(err)

	_, err = s.repo.ApplyMutation(s.ctx, character.ApplyMutationInput{
		CharacterData: s.testCharacter(),
		SubRecordsToDelete: []saga.SubRecord{
			{Type: saga.SubRecordTalent, Name: "Armored Defense"},
		},
	})
	s.Require().NoError(err)

	subs, err := s.subStore.List(s.ctx, subrecord.ListInput{CharacterID: testCharID, Type: saga.SubRecordTalent})
	s.Require().NoError(err)
	s.Empty(subs.Names)
}

func (s *RedisRepositoryTestSuite) TestLockIsExclusive() {
	_, err := s.repo.AcquireLock(s.ctx, character.AcquireLockInput{CharacterID: testCharID})
	s.Require().NoError(err)

	_, err = s.repo.AcquireLock(s.ctx, character.AcquireLockInput{CharacterID: testCharID})
	s.Require().Error(err)
	s.True(errors.IsAborted(err))
	s.Contains(err.Error(), "progression transaction already in progress")

	locked, err := s.repo.IsLocked(s.ctx, character.IsLockedInput{CharacterID: testCharID})
	s.Require().NoError(err)
	s.True(locked.Held)
}

func (s *RedisRepositoryTestSuite) TestLockPerCharacter() {
	_, err := s.repo.AcquireLock(s.ctx, character.AcquireLockInput{CharacterID: testCharID})
	s.Require().NoError(err)

	// A different character's lock is independent
	_, err = s.repo.AcquireLock(s.ctx, character.AcquireLockInput{CharacterID: "char_other"})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestReleaseLockAllowsReacquire() {
	_, err := s.repo.AcquireLock(s.ctx, character.AcquireLockInput{CharacterID: testCharID})
	s.Require().NoError(err)

	_, err = s.repo.ReleaseLock(s.ctx, character.ReleaseLockInput{CharacterID: testCharID})
	s.Require().NoError(err)

	locked, err := s.repo.IsLocked(s.ctx, character.IsLockedInput{CharacterID: testCharID})
	s.Require().NoError(err)
	s.False(locked.Held)

	_, err = s.repo.AcquireLock(s.ctx, character.AcquireLockInput{CharacterID: testCharID})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestReleaseLockIsUnconditional() {
	// Releasing a lock nobody holds is not an error
	_, err := s.repo.ReleaseLock(s.ctx, character.ReleaseLockInput{CharacterID: testCharID})
	s.Require().NoError(err)
}
