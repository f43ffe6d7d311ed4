package redis_store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testRedisAddr     = "localhost:6379"
	testRedisPassword = "password"
)

// 需要本機redis
type RedisStoreTestSuite struct {
	suite.Suite
	store *RedisStore
}

func TestRedisStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func setupTestRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     testRedisAddr,
		Password: testRedisPassword,
		DB:       1, // 用測試DB
	})
}

func (suite *RedisStoreTestSuite) SetupTest() {
	rdb := setupTestRedis()
	rdb.FlushDB(context.Background())
	suite.store = New(rdb)
}

func (suite *RedisStoreTestSuite) TestSetGetDelete() {
	ctx := context.Background()
	doc := []byte(`{"name":"sofa","price":"1000"}`)

	require.NoError(suite.T(), suite.store.Set(ctx, docstore.CollectionProducts, "p1", doc))

	got, err := suite.store.Get(ctx, docstore.CollectionProducts, "p1")
	require.NoError(suite.T(), err)
	require.JSONEq(suite.T(), string(doc), string(got))

	require.NoError(suite.T(), suite.store.Delete(ctx, docstore.CollectionProducts, "p1"))
	_, err = suite.store.Get(ctx, docstore.CollectionProducts, "p1")
	require.ErrorIs(suite.T(), err, docstore.ErrDocNotFound)
}

// 併發CAS更新不會丟失任何一次遞增
func (suite *RedisStoreTestSuite) TestUpdateUnderContention() {
	ctx := context.Background()
	type counter struct {
		Value int `json:"value"`
	}
	require.NoError(suite.T(), suite.store.Set(ctx, docstore.CollectionCarts, "c1", []byte(`{"value":0}`)))

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := suite.store.Update(ctx, docstore.CollectionCarts, "c1", func(cur []byte) ([]byte, error) {
				var c counter
				if err := json.Unmarshal(cur, &c); err != nil {
					return nil, err
				}
				c.Value++
				return json.Marshal(c)
			})
			require.NoError(suite.T(), err)
		}()
	}
	wg.Wait()

	got, err := suite.store.Get(ctx, docstore.CollectionCarts, "c1")
	require.NoError(suite.T(), err)
	var c counter
	require.NoError(suite.T(), json.Unmarshal(got, &c))
	require.Equal(suite.T(), writers, c.Value)
}

func (suite *RedisStoreTestSuite) TestQueryWithFilters() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.store.Set(ctx, docstore.CollectionPayments, "p1", []byte(`{"user_id":"u1","status":"pending"}`)))
	require.NoError(suite.T(), suite.store.Set(ctx, docstore.CollectionPayments, "p2", []byte(`{"user_id":"u2","status":"pending"}`)))

	docs, err := suite.store.Query(ctx, docstore.CollectionPayments, docstore.Where("user_id", "u1"))
	require.NoError(suite.T(), err)
	require.Len(suite.T(), docs, 1)
}

// pub/sub watch收得到變更
func (suite *RedisStoreTestSuite) TestWatch() {
	ctx := context.Background()
	changes, cancel, err := suite.store.Watch(ctx, docstore.CollectionOrders)
	require.NoError(suite.T(), err)
	defer cancel()

	// 等訂閱建立
	time.Sleep(100 * time.Millisecond)
	require.NoError(suite.T(), suite.store.Set(ctx, docstore.CollectionOrders, "o1", []byte(`{"status":"pending"}`)))

	select {
	case change := <-changes:
		require.Equal(suite.T(), "o1", change.DocID)
		require.Equal(suite.T(), docstore.CollectionOrders, change.Collection)
	case <-time.After(3 * time.Second):
		suite.T().Fatal("timed out waiting for change")
	}
}
