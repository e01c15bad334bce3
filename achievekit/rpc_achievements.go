package achievekit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcId names the RPCs this module registers.
type RpcId string

const (
	RpcIdSaveDataUpload RpcId = "achievements_save_upload"
	RpcIdSaveDataFetch  RpcId = "achievements_save_fetch"
	RpcIdProfileGet     RpcId = "achievements_profile_get"
)

func (id RpcId) String() string { return string(id) }

type rpcFn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// RegisterRpcs registers the save data and profile RPCs.
func RegisterRpcs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcIdSaveDataUpload.String(), rpcSaveDataUpload()); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcIdSaveDataFetch.String(), rpcSaveDataFetch()); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcIdProfileGet.String(), rpcProfileGet()); err != nil {
		return err
	}
	return nil
}

// UnregisterRpc replaces the given RPCs with no-ops. Nakama keeps the last
// registration, so call this after RegisterRpcs.
func UnregisterRpc(initializer runtime.Initializer, ids ...RpcId) error {
	noopFn := func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		return "", runtime.NewError("not found", NOT_FOUND_ERROR_CODE)
	}
	for _, id := range ids {
		if err := initializer.RegisterRpc(id.String(), noopFn); err != nil {
			return err
		}
	}
	return nil
}

func sessionUserID(ctx context.Context, logger runtime.Logger) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		logger.Error("No user ID in context")
		return "", ErrNoSessionUser
	}
	return userID, nil
}

func encodeResponse(logger runtime.Logger, response any) (string, error) {
	responseData, err := json.Marshal(response)
	if err != nil {
		logger.Error("Failed to marshal response: %v", err)
		return "", ErrPayloadEncode
	}
	return string(responseData), nil
}

// runtimeError returns the coded error wrapped in err so Nakama reports its
// status code. The cause has already been logged by the caller.
func runtimeError(err error) error {
	var coded *runtime.Error
	if errors.As(err, &coded) {
		return coded
	}
	return err
}

type saveDataPayload struct {
	Data string `json:"data"`
}

func rpcSaveDataUpload() rpcFn {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, err := sessionUserID(ctx, logger)
		if err != nil {
			return "", err
		}
		return handleSaveDataUpload(ctx, logger, NewNakamaStore(nk, userID), payload)
	}
}

// handleSaveDataUpload stores a client blob after checking that it decodes,
// so a corrupt client cannot overwrite good data.
func handleSaveDataUpload(ctx context.Context, logger runtime.Logger, store *NakamaStore, payload string) (string, error) {
	var request saveDataPayload
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		logger.Error("Failed to unmarshal SaveDataUploadRequest: %v", err)
		return "", ErrPayloadDecode
	}
	if request.Data == "" {
		return "", ErrPayloadEmpty
	}

	file, err := Decode(request.Data)
	if err != nil {
		logger.Warn("Rejected save data upload for user %s: %v", store.userID, err)
		return "", ErrCorruptSaveData
	}
	if err := store.Upload(ctx, request.Data); err != nil {
		logger.Error("Failed to store save data for user %s: %v", store.userID, err)
		return "", runtimeError(err)
	}

	return encodeResponse(logger, struct {
		Success      bool `json:"success"`
		Version      int  `json:"version"`
		Achievements int  `json:"achievements"`
	}{
		Success:      true,
		Version:      file.Version,
		Achievements: len(file.Achievements),
	})
}

func rpcSaveDataFetch() rpcFn {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, err := sessionUserID(ctx, logger)
		if err != nil {
			return "", err
		}
		return handleSaveDataFetch(ctx, logger, NewNakamaStore(nk, userID))
	}
}

// handleSaveDataFetch returns the stored blob; an empty data field means the
// user has no save data yet.
func handleSaveDataFetch(ctx context.Context, logger runtime.Logger, store *NakamaStore) (string, error) {
	blob, err := store.Fetch(ctx)
	if err != nil {
		logger.Error("Failed to read save data for user %s: %v", store.userID, err)
		return "", runtimeError(err)
	}
	return encodeResponse(logger, saveDataPayload{Data: blob})
}

func rpcProfileGet() rpcFn {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, err := sessionUserID(ctx, logger)
		if err != nil {
			return "", err
		}
		return handleProfileGet(ctx, logger, nk, userID, payload)
	}
}

// handleProfileGet reads the profile content of the user named in the payload,
// or of the caller when none is given.
func handleProfileGet(ctx context.Context, logger runtime.Logger, nk StorageModule, callerID, payload string) (string, error) {
	var request struct {
		UserID string `json:"user_id,omitempty"`
	}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal ProfileGetRequest: %v", err)
			return "", ErrPayloadDecode
		}
	}
	userID := request.UserID
	if userID == "" {
		userID = callerID
	}

	content, err := NewNakamaStore(nk, userID).GetContent(ctx)
	if err != nil {
		logger.Error("Failed to read profile content for user %s: %v", userID, err)
		return "", runtimeError(err)
	}
	return encodeResponse(logger, content)
}
