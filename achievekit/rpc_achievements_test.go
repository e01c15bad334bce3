package achievekit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userContext(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

func validBlob(t *testing.T) string {
	t.Helper()
	d := newRegisteredData(t, nil, nil)
	bumpProgress(d, IDMasterOfPuppets, 3)
	blob, err := Encode(d, gzip.DefaultCompression)
	require.NoError(t, err)
	return blob
}

func TestRpcSaveData_UploadThenFetch(t *testing.T) {
	nk := newTestNakama()
	ctx := userContext("user1")
	logger := &mockLogger{}
	blob := validBlob(t)

	payload, err := json.Marshal(saveDataPayload{Data: blob})
	require.NoError(t, err)
	resp, err := rpcSaveDataUpload()(ctx, logger, nil, nk, string(payload))
	require.NoError(t, err)

	var uploaded struct {
		Success      bool `json:"success"`
		Version      int  `json:"version"`
		Achievements int  `json:"achievements"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp), &uploaded))
	assert.True(t, uploaded.Success)
	assert.Equal(t, SaveDataVersion, uploaded.Version)
	assert.Equal(t, 28, uploaded.Achievements)

	resp, err = rpcSaveDataFetch()(ctx, logger, nil, nk, "")
	require.NoError(t, err)
	var fetched saveDataPayload
	require.NoError(t, json.Unmarshal([]byte(resp), &fetched))
	assert.Equal(t, blob, fetched.Data)
}

func TestRpcSaveData_FetchEmpty(t *testing.T) {
	resp, err := rpcSaveDataFetch()(userContext("user1"), &mockLogger{}, nil, newTestNakama(), "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":""}`, resp)
}

func TestRpcSaveData_UploadRejectsBadInput(t *testing.T) {
	nk := newTestNakama()
	ctx := userContext("user1")
	logger := &mockLogger{}
	upload := rpcSaveDataUpload()

	_, err := upload(ctx, logger, nil, nk, "{")
	assert.ErrorIs(t, err, ErrPayloadDecode)

	_, err = upload(ctx, logger, nil, nk, `{"data":""}`)
	assert.ErrorIs(t, err, ErrPayloadEmpty)

	_, err = upload(ctx, logger, nil, nk, `{"data":"garbage"}`)
	assert.ErrorIs(t, err, ErrCorruptSaveData)
	assert.Empty(t, nk.writes, "rejected uploads never reach storage")
}

func TestRpcSaveData_RequiresSessionUser(t *testing.T) {
	_, err := rpcSaveDataUpload()(context.Background(), &mockLogger{}, nil, newTestNakama(), `{"data":"x"}`)
	assert.ErrorIs(t, err, ErrNoSessionUser)
	_, err = rpcSaveDataFetch()(context.Background(), &mockLogger{}, nil, newTestNakama(), "")
	assert.ErrorIs(t, err, ErrNoSessionUser)
	_, err = rpcProfileGet()(context.Background(), &mockLogger{}, nil, newTestNakama(), "")
	assert.ErrorIs(t, err, ErrNoSessionUser)
}

func TestRpcSaveData_StorageFailureKeepsCode(t *testing.T) {
	nk := newTestNakama()
	nk.storageErr = errors.New("db down")
	ctx := userContext("user1")

	_, err := rpcSaveDataFetch()(ctx, &mockLogger{}, nil, nk, "")
	assert.Same(t, ErrStoreUnavailable, err)

	payload, err := json.Marshal(saveDataPayload{Data: validBlob(t)})
	require.NoError(t, err)
	_, err = rpcSaveDataUpload()(ctx, &mockLogger{}, nil, nk, string(payload))
	assert.Same(t, ErrStoreUnavailable, err)

	_, err = rpcProfileGet()(ctx, &mockLogger{}, nil, nk, "")
	assert.Same(t, ErrStoreUnavailable, err)
}

func TestRpcProfileGet(t *testing.T) {
	nk := newTestNakama()
	require.NoError(t, NewNakamaStore(nk, "other").SetContent(context.Background(), &ProfileContent{CompletedAchievementsTotal: 5}))

	resp, err := rpcProfileGet()(userContext("user1"), &mockLogger{}, nil, nk, `{"user_id":"other"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"completed_achievements_total":5}`, resp)

	resp, err = rpcProfileGet()(userContext("user1"), &mockLogger{}, nil, nk, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"completed_achievements_total":0}`, resp)

	_, err = rpcProfileGet()(userContext("user1"), &mockLogger{}, nil, nk, "nope")
	assert.ErrorIs(t, err, ErrPayloadDecode)
}

// testInitializer records registered RPC ids.
type testInitializer struct {
	runtime.Initializer
	rpcs map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error)
}

func (i *testInitializer) RegisterRpc(id string, fn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)) error {
	i.rpcs[id] = fn
	return nil
}

func TestRegisterRpcs(t *testing.T) {
	initializer := &testInitializer{rpcs: map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){}}
	require.NoError(t, RegisterRpcs(initializer))
	assert.Len(t, initializer.rpcs, 3)
	assert.Contains(t, initializer.rpcs, "achievements_save_upload")
	assert.Contains(t, initializer.rpcs, "achievements_save_fetch")
	assert.Contains(t, initializer.rpcs, "achievements_profile_get")

	require.NoError(t, UnregisterRpc(initializer, RpcIdSaveDataUpload))
	_, err := initializer.rpcs[RpcIdSaveDataUpload.String()](userContext("u"), &mockLogger{}, nil, newTestNakama(), `{"data":"x"}`)
	assert.Error(t, err)
}
