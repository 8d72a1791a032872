package subrecord

import (
	"context"

	"github.com/swsaga/progression-api/internal/errors"
	redisclient "github.com/swsaga/progression-api/internal/redis"
)

const (
	errCharacterIDEmpty = "character ID cannot be empty"
	errNameEmpty        = "sub-record name cannot be empty"
)

type redisStore struct {
	client redisclient.Client
}

// NewRedis creates a new Redis-backed sub-record store
func NewRedis(client redisclient.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.SubRecord.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	key := Key(input.CharacterID, input.SubRecord.Type)
	if err := s.client.SAdd(ctx, key, input.SubRecord.Name).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to create sub-record")
	}
	return &CreateOutput{}, nil
}

func (s *redisStore) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.SubRecord.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	key := Key(input.CharacterID, input.SubRecord.Type)
	if err := s.client.SRem(ctx, key, input.SubRecord.Name).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete sub-record")
	}
	return &DeleteOutput{}, nil
}

func (s *redisStore) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := Key(input.CharacterID, input.Type)
	names, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list sub-records")
	}
	return &ListOutput{Names: names}, nil
}
