package snapshot

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
	snapshotKeyPrefix = "progression:snapshot:"

	// Snapshots are audit artifacts; keep them for 30 days
	snapshotTTL = 30 * 24 * time.Hour

	errSnapshotNil     = "snapshot cannot be nil"
	errSnapshotIDEmpty = "snapshot ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedis creates a new Redis-backed snapshot repository
func NewRedis(client redisclient.Client) Repository {
	return &redisRepository{client: client}
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument(errSnapshotNil)
	}
	if input.Snapshot.ID == "" {
		return nil, errors.InvalidArgument(errSnapshotIDEmpty)
	}

	data, err := json.Marshal(input.Snapshot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal snapshot")
	}

	key := snapshotKeyPrefix + input.Snapshot.ID
	if err := r.client.Set(ctx, key, data, snapshotTTL).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store snapshot")
	}
	return &CreateOutput{}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSnapshotIDEmpty)
	}

	key := snapshotKeyPrefix + input.ID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("snapshot with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get snapshot")
	}

	var snap saga.Snapshot
	if err := json.Unmarshal([]byte(result), &snap); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal snapshot")
	}

	return &GetOutput{Snapshot: &snap}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSnapshotIDEmpty)
	}

	if err := r.client.Del(ctx, snapshotKeyPrefix+input.ID).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete snapshot")
	}
	return &DeleteOutput{}, nil
}
