package basket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreLoadMissingSession(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStoreWithClient(client, time.Hour)

	mock.ExpectGet("basket:s1").RedisNil()

	items, err := store.Load(context.Background(), "s1")

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStoreWithClient(client, time.Hour)

	items := map[string]Item{
		"1": {Price: "10.00", Category: "Normal"},
		"3": {Price: "30.00", Category: "VIP"},
	}
	payload, err := json.Marshal(items)
	require.NoError(t, err)

	mock.ExpectSet("basket:s1", payload, time.Hour).SetVal("OK")
	require.NoError(t, store.Save(context.Background(), "s1", items))

	mock.ExpectGet("basket:s1").SetVal(string(payload))
	loaded, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, items, loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreClear(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStoreWithClient(client, time.Hour)

	mock.ExpectDel("basket:s1").SetVal(1)

	require.NoError(t, store.Clear(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreLoadCorruptPayload(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStoreWithClient(client, time.Hour)

	mock.ExpectGet("basket:s1").SetVal("{not json")

	_, err := store.Load(context.Background(), "s1")

	assert.Error(t, err)
}
