package redis_store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix     = "furnimart"
	maxCASRetries = 10
)

// RedisStore 以redis hash為後端的docstore
// 一個collection一個hash key 文件存json
// Update用Lua CAS保證單文件原子性 非讀-算-寫三段式
type RedisStore struct {
	client *redis.Client
}

func New(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func collKey(coll docstore.Collection) string {
	return fmt.Sprintf("%s:%s", keyPrefix, coll)
}

func changeChannel(coll docstore.Collection) string {
	return fmt.Sprintf("%s:changes:%s", keyPrefix, coll)
}

// casScript 只有當前值仍等於讀到的舊值才寫入
// 舊值為空字串表示當時文件不存在
var casScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if cur == false then
	cur = ''
end
if cur ~= ARGV[2] then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
return 1
`)

func (s *RedisStore) Get(ctx context.Context, coll docstore.Collection, id string) ([]byte, error) {
	doc, err := s.client.HGet(ctx, collKey(coll), id).Bytes()
	if err == redis.Nil {
		return nil, docstore.ErrDocNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", coll, id, err)
	}
	return doc, nil
}

func (s *RedisStore) Set(ctx context.Context, coll docstore.Collection, id string, doc []byte) error {
	existed, err := s.client.HExists(ctx, collKey(coll), id).Result()
	if err != nil {
		return fmt.Errorf("failed to check document %s/%s: %w", coll, id, err)
	}
	if err := s.client.HSet(ctx, collKey(coll), id, doc).Err(); err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", coll, id, err)
	}
	s.publishChange(ctx, coll, id, doc, existed)
	return nil
}

func (s *RedisStore) Create(ctx context.Context, coll docstore.Collection, doc []byte) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, coll, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// Update 樂觀CAS迴圈 衝突就重讀重算
func (s *RedisStore) Update(ctx context.Context, coll docstore.Collection, id string, mutate docstore.UpdateFunc) ([]byte, error) {
	key := collKey(coll)
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var cur []byte
		old := ""
		existed := true
		raw, err := s.client.HGet(ctx, key, id).Result()
		if err == redis.Nil {
			existed = false
		} else if err != nil {
			return nil, fmt.Errorf("failed to read document %s/%s: %w", coll, id, err)
		} else {
			cur = []byte(raw)
			old = raw
		}

		next, err := mutate(cur)
		if err != nil {
			return nil, err
		}

		ok, err := casScript.Run(ctx, s.client, []string{key}, id, old, string(next)).Int()
		if err != nil {
			return nil, fmt.Errorf("failed to cas document %s/%s: %w", coll, id, err)
		}
		if ok == 1 {
			s.publishChange(ctx, coll, id, next, existed)
			return next, nil
		}
	}
	return nil, docstore.ErrUpdateConflict
}

func (s *RedisStore) Delete(ctx context.Context, coll docstore.Collection, id string) error {
	removed, err := s.client.HDel(ctx, collKey(coll), id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", coll, id, err)
	}
	if removed == 0 {
		return docstore.ErrDocNotFound
	}
	s.publish(ctx, coll, docstore.Change{Type: docstore.ChangeRemoved, Collection: coll, DocID: id})
	return nil
}

// Query 全量HGETALL後在client端過濾
// collection規模是單一商店目錄等級 可接受
func (s *RedisStore) Query(ctx context.Context, coll docstore.Collection, filters ...docstore.Filter) (map[string][]byte, error) {
	all, err := s.client.HGetAll(ctx, collKey(coll)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", coll, err)
	}
	result := make(map[string][]byte)
	for id, raw := range all {
		doc := []byte(raw)
		if docstore.Matches(doc, filters) {
			result[id] = doc
		}
	}
	return result, nil
}

// Watch 透過pub/sub訂閱collection異動
func (s *RedisStore) Watch(ctx context.Context, coll docstore.Collection) (<-chan docstore.Change, func(), error) {
	sub := s.client.Subscribe(ctx, changeChannel(coll))
	// 確認訂閱已建立
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe collection %s: %w", coll, err)
	}

	out := make(chan docstore.Change, 64)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var change docstore.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Error().Err(err).Str("collection", string(coll)).Msg("failed to unmarshal change payload")
				continue
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		sub.Close()
	}
	return out, cancel, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) publishChange(ctx context.Context, coll docstore.Collection, id string, doc []byte, existed bool) {
	typ := docstore.ChangeAdded
	if existed {
		typ = docstore.ChangeModified
	}
	s.publish(ctx, coll, docstore.Change{Type: typ, Collection: coll, DocID: id, Doc: doc})
}

// 異動通知失敗不影響寫入本身 記log後繼續
func (s *RedisStore) publish(ctx context.Context, coll docstore.Collection, change docstore.Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		log.Error().Err(err).Str("collection", string(coll)).Msg("failed to marshal change payload")
		return
	}
	if err := s.client.Publish(ctx, changeChannel(coll), payload).Err(); err != nil {
		log.Error().Err(err).Str("collection", string(coll)).Msg("failed to publish change")
	}
}

var _ docstore.Store = (*RedisStore)(nil)
