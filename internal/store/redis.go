package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists rooms and shape logs in redis: one key per room
// record, one list per shape log, plus a set of known room ids.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to redis, retrying until the first ping succeeds.
func NewRedisStore(opts *redis.Options) *RedisStore {
	rdb := redis.NewClient(opts)
	ctx := context.Background()

	for err := rdb.Ping(ctx).Err(); err != nil; err = rdb.Ping(ctx).Err() {
		log.Println("Can't connect to redis. Retrying in 2 seconds...:", err)
		rdb.Close()
		time.Sleep(2 * time.Second)
		rdb = redis.NewClient(opts)
	}
	log.Println("Successfully connected to redis.")

	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) CreateRoom(ctx context.Context, room Room) error {
	bytes, err := json.Marshal(room)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKeys.ROOM(room.ID), bytes, 0).Err(); err != nil {
		return err
	}
	return s.rdb.SAdd(ctx, redisKeys.ROOM_IDS, room.ID).Err()
}

func (s *RedisStore) GetRoom(ctx context.Context, roomID string) (Room, error) {
	bytes, err := s.rdb.Get(ctx, redisKeys.ROOM(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Room{}, ErrRoomNotFound
	}
	if err != nil {
		return Room{}, err
	}
	var room Room
	if err := json.Unmarshal(bytes, &room); err != nil {
		return Room{}, err
	}
	return room, nil
}

func (s *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	if err := s.rdb.Del(ctx, redisKeys.ROOM(roomID)).Err(); err != nil {
		return err
	}
	return s.rdb.SRem(ctx, redisKeys.ROOM_IDS, roomID).Err()
}

func (s *RedisStore) AppendShape(ctx context.Context, roomID, owner string, shapeJSON []byte) error {
	entry := LogEntry{Owner: owner, Shape: shapeJSON}
	bytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.rdb.RPush(ctx, redisKeys.ROOM_SHAPES(roomID), bytes).Err()
}

func (s *RedisStore) ListShapes(ctx context.Context, roomID string) ([]LogEntry, error) {
	raw, err := s.rdb.LRange(ctx, redisKeys.ROOM_SHAPES(roomID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LogEntry, 0, len(raw))
	for _, item := range raw {
		var entry LogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			log.Println("could not unmarshal shape log entry:", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RedisStore) DeleteShapes(ctx context.Context, roomID string) error {
	return s.rdb.Del(ctx, redisKeys.ROOM_SHAPES(roomID)).Err()
}
