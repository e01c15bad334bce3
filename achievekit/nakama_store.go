package achievekit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	achievementStorageCollection = "achievements"
	saveDataStorageKey           = "save_data"
	profileContentStorageKey     = "profile_content"
)

// StorageModule is the part of runtime.NakamaModule the store needs.
type StorageModule interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// storedSaveData is the storage object wrapping an encoded blob.
type storedSaveData struct {
	Data      string `json:"data"`
	UpdatedAt int64  `json:"updated_at"`
}

// NakamaStore keeps one user's save data and profile content in Nakama
// storage. It implements RemoteStore and ProfileStore.
type NakamaStore struct {
	nk     StorageModule
	userID string
	clock  Clock
}

func NewNakamaStore(nk StorageModule, userID string) *NakamaStore {
	return &NakamaStore{nk: nk, userID: userID, clock: SystemClock}
}

// Upload overwrites the stored blob.
func (s *NakamaStore) Upload(ctx context.Context, blob string) error {
	if blob == "" {
		return ErrPayloadEmpty
	}
	return s.write(ctx, saveDataStorageKey, &storedSaveData{
		Data:      blob,
		UpdatedAt: s.clock.Now().Unix(),
	}, runtime.STORAGE_PERMISSION_OWNER_READ)
}

// Fetch returns the stored blob, or "" when the user has never uploaded.
func (s *NakamaStore) Fetch(ctx context.Context) (string, error) {
	var stored storedSaveData
	obj, err := s.read(ctx, saveDataStorageKey, &stored, ErrCorruptSaveData)
	if err != nil || obj == nil {
		return "", err
	}
	return stored.Data, nil
}

// LastUpload reports when Nakama last accepted an upload, or the zero time
// when nothing is stored.
func (s *NakamaStore) LastUpload(ctx context.Context) (time.Time, error) {
	var stored storedSaveData
	obj, err := s.read(ctx, saveDataStorageKey, &stored, ErrCorruptSaveData)
	if err != nil || obj == nil {
		return time.Time{}, err
	}
	if ts := obj.GetUpdateTime(); ts.IsValid() {
		return ts.AsTime(), nil
	}
	return time.Unix(stored.UpdatedAt, 0).UTC(), nil
}

// GetContent returns the profile content, or an empty value when none exists.
func (s *NakamaStore) GetContent(ctx context.Context) (*ProfileContent, error) {
	content := &ProfileContent{}
	if _, err := s.read(ctx, profileContentStorageKey, content, ErrCorruptProfile); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *NakamaStore) SetContent(ctx context.Context, content *ProfileContent) error {
	if content == nil {
		return ErrPayloadEmpty
	}
	return s.write(ctx, profileContentStorageKey, content, runtime.STORAGE_PERMISSION_PUBLIC_READ)
}

// read decodes the stored object into out. A value that is not valid JSON is
// reported as corrupt.
func (s *NakamaStore) read(ctx context.Context, key string, out any, corrupt error) (*api.StorageObject, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: achievementStorageCollection,
		Key:        key,
		UserID:     s.userID,
	}})
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, key, err)
	}
	if len(objects) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(objects[0].Value), out); err != nil {
		return nil, fmt.Errorf("%w: %v", corrupt, err)
	}
	return objects[0], nil
}

func (s *NakamaStore) write(ctx context.Context, key string, value any, permissionRead int) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrPayloadEncode
	}
	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      achievementStorageCollection,
		Key:             key,
		UserID:          s.userID,
		Value:           string(data),
		PermissionRead:  permissionRead,
		PermissionWrite: runtime.STORAGE_PERMISSION_OWNER_WRITE,
	}})
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}
