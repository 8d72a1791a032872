package session

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
	redisclient "github.com/swsaga/progression-api/internal/redis"
)

const (
	sessionKeyPrefix = "progression:session:"

	// Sessions are resumable for a week before they expire
	sessionTTL = 7 * 24 * time.Hour

	errSessionNil       = "session cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedis creates a new Redis-backed session repository
func NewRedis(client redisclient.Client) Repository {
	return &redisRepository{client: client}
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := sessionKeyPrefix + input.CharacterID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no progression session for character %s", input.CharacterID)
		}
		return nil, errors.Wrapf(err, "failed to get session")
	}

	var sess saga.ProgressionSession
	if err := json.Unmarshal([]byte(result), &sess); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session")
	}

	return &GetOutput{Session: &sess}, nil
}

func (r *redisRepository) Put(ctx context.Context, input PutInput) (*PutOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal session")
	}

	key := sessionKeyPrefix + input.Session.CharacterID
	if err := r.client.Set(ctx, key, data, sessionTTL).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store session")
	}
	return &PutOutput{}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	if err := r.client.Del(ctx, sessionKeyPrefix+input.CharacterID).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete session")
	}
	return &DeleteOutput{}, nil
}
