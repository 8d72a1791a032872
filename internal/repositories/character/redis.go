package character

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
	"github.com/swsaga/progression-api/internal/pkg/clock"
	redisclient "github.com/swsaga/progression-api/internal/redis"
	"github.com/swsaga/progression-api/internal/repositories/subrecord"
)

const (
	characterKeyPrefix = "character:"
	playerIndexPrefix  = "character:player:"
	lockKeyPrefix      = "character:lock:"

	// Error messages
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
	errPlayerIDEmpty    = "player ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.CharacterData == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.CharacterData.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKeyPrefix + input.CharacterData.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("character with ID %s already exists", input.CharacterData.ID)
	}

	data, err := json.Marshal(input.CharacterData)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character data")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0) // No TTL for characters
	if input.CharacterData.PlayerID != "" {
		pipe.SAdd(ctx, playerIndexPrefix+input.CharacterData.PlayerID, input.CharacterData.ID)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create character")
	}

	return &CreateOutput{CharacterData: input.CharacterData}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKeyPrefix + input.ID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}

	var charData saga.CharacterData
	if err := json.Unmarshal([]byte(result), &charData); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character data")
	}

	return &GetOutput{CharacterData: &charData}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.CharacterData == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.CharacterData.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKeyPrefix + input.CharacterData.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("character with ID %s not found", input.CharacterData.ID)
	}

	input.CharacterData.UpdatedAt = r.clock.Now().Unix()
	data, err := json.Marshal(input.CharacterData)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character data")
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update character")
	}

	return &UpdateOutput{CharacterData: input.CharacterData}, nil
}

func (r *redisRepository) ListByPlayerID(
	ctx context.Context,
	input ListByPlayerIDInput,
) (*ListByPlayerIDOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	indexKey := playerIndexPrefix + input.PlayerID
	characterIDs, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get characters from index %s", indexKey)
	}

	characters := make([]*saga.CharacterData, 0, len(characterIDs))
	for _, id := range characterIDs {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			// If character doesn't exist, clean up the index
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "character not found, cleaning up index",
					"character_id", id,
					"index_key", indexKey)
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get character %s", id)
		}
		characters = append(characters, getOutput.CharacterData)
	}

	return &ListByPlayerIDOutput{Characters: characters}, nil
}

// ApplyMutation upserts the character record and its sub-record changes in
// one transaction. Readers observe either the fully-old or fully-new state.
func (r *redisRepository) ApplyMutation(ctx context.Context, input ApplyMutationInput) (*ApplyMutationOutput, error) {
	if input.CharacterData == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.CharacterData.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	charID := input.CharacterData.ID
	input.CharacterData.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.CharacterData)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character data")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, characterKeyPrefix+charID, data, 0)
	if input.CharacterData.PlayerID != "" {
		pipe.SAdd(ctx, playerIndexPrefix+input.CharacterData.PlayerID, charID)
	}
	for _, sub := range input.SubRecordsToCreate {
		pipe.SAdd(ctx, subrecord.Key(charID, sub.Type), sub.Name)
	}
	for _, sub := range input.SubRecordsToDelete {
		pipe.SRem(ctx, subrecord.Key(charID, sub.Type), sub.Name)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to apply mutation packet")
	}

	slog.DebugContext(ctx, "applied mutation packet",
		"character_id", charID,
		"sub_records_created", len(input.SubRecordsToCreate),
		"sub_records_deleted", len(input.SubRecordsToDelete))

	return &ApplyMutationOutput{CharacterData: input.CharacterData}, nil
}

// AcquireLock sets the per-character progression lock with an atomic
// SETNX. The flag lives in the store, not in process memory, so it
// survives restarts and is visible to every mutator. No TTL: a stuck lock
// requires an explicit administrative clear.
func (r *redisRepository) AcquireLock(ctx context.Context, input AcquireLockInput) (*AcquireLockOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := lockKeyPrefix + input.CharacterID
	acquired, err := r.client.SetNX(ctx, key, r.clock.Now().Unix(), 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to acquire progression lock")
	}
	if !acquired {
		return nil, errors.Abortedf("progression transaction already in progress for character %s", input.CharacterID).
			WithMeta("character_id", input.CharacterID)
	}
	return &AcquireLockOutput{}, nil
}

func (r *redisRepository) ReleaseLock(ctx context.Context, input ReleaseLockInput) (*ReleaseLockOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	if err := r.client.Del(ctx, lockKeyPrefix+input.CharacterID).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to release progression lock")
	}
	return &ReleaseLockOutput{}, nil
}

func (r *redisRepository) IsLocked(ctx context.Context, input IsLockedInput) (*IsLockedOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	exists, err := r.client.Exists(ctx, lockKeyPrefix+input.CharacterID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check progression lock")
	}
	return &IsLockedOutput{Held: exists > 0}, nil
}
