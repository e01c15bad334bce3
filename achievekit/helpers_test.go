package achievekit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// mockLogger is a simple logger that implements runtime.Logger for testing.
type mockLogger struct{}

func (l *mockLogger) Debug(format string, v ...interface{})                   {}
func (l *mockLogger) Info(format string, v ...interface{})                    {}
func (l *mockLogger) Warn(format string, v ...interface{})                    {}
func (l *mockLogger) Error(format string, v ...interface{})                   {}
func (l *mockLogger) WithField(key string, v interface{}) runtime.Logger      { return l }
func (l *mockLogger) WithFields(fields map[string]interface{}) runtime.Logger { return l }
func (l *mockLogger) Fields() map[string]interface{}                          { return nil }

var testEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeState is a StateInspector whose answers are set directly by tests.
type fakeState struct {
	mu sync.Mutex
	f  stateFields
}

type stateFields struct {
	uid        string
	inDuty     bool
	zone       uint16
	partySize  int
	gagged     bool
	restrained bool

	panicOn string
}

func newFakeState() *fakeState {
	return &fakeState{f: stateFields{uid: "self", partySize: 1}}
}

func (s *fakeState) set(fn func(f *stateFields)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.f)
}

func (s *fakeState) get() stateFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f
}

// read returns the current answers, panicking when method is the one
// configured to fail.
func (s *fakeState) read(method string) stateFields {
	f := s.get()
	if f.panicOn == method {
		panic(method + " unavailable")
	}
	return f
}

func (s *fakeState) LocalUID() string   { return s.read("LocalUID").uid }
func (s *fakeState) InDuty() bool       { return s.read("InDuty").inDuty }
func (s *fakeState) ZoneID() uint16     { return s.read("ZoneID").zone }
func (s *fakeState) PartySize() int     { return s.read("PartySize").partySize }
func (s *fakeState) IsGagged() bool     { return s.read("IsGagged").gagged }
func (s *fakeState) IsRestrained() bool { return s.read("IsRestrained").restrained }

// testNakamaModule is a test double for runtime.NakamaModule.
// Only implements the methods needed for the tests.
type testNakamaModule struct {
	runtime.NakamaModule

	mu            sync.Mutex
	storageData   map[string]string // map of collection:key:userID -> value
	writes        []*runtime.StorageWrite
	notifications []testNotification
	storageErr    error
}

type testNotification struct {
	UserID  string
	Subject string
	Content map[string]interface{}
	Code    int
}

func newTestNakama() *testNakamaModule {
	return &testNakamaModule{
		storageData: make(map[string]string),
	}
}

func formatStorageKey(collection, key, userID string) string {
	return collection + ":" + key + ":" + userID
}

func (n *testNakamaModule) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.storageErr != nil {
		return nil, n.storageErr
	}
	result := make([]*api.StorageObject, 0, len(reads))
	for _, read := range reads {
		value, exists := n.storageData[formatStorageKey(read.Collection, read.Key, read.UserID)]
		if exists {
			result = append(result, &api.StorageObject{
				Collection: read.Collection,
				Key:        read.Key,
				UserId:     read.UserID,
				Value:      value,
				Version:    "1",
				UpdateTime: timestamppb.New(testEpoch),
			})
		}
	}
	return result, nil
}

func (n *testNakamaModule) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.storageErr != nil {
		return nil, n.storageErr
	}
	result := make([]*api.StorageObjectAck, 0, len(writes))
	for _, write := range writes {
		n.storageData[formatStorageKey(write.Collection, write.Key, write.UserID)] = write.Value
		n.writes = append(n.writes, write)
		result = append(result, &api.StorageObjectAck{
			Collection: write.Collection,
			Key:        write.Key,
			UserId:     write.UserID,
			Version:    "1",
		})
	}
	return result, nil
}

func (n *testNakamaModule) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, testNotification{UserID: userID, Subject: subject, Content: content, Code: code})
	return nil
}

// fakeRemote records uploaded blobs and signals each one on uploaded.
type fakeRemote struct {
	mu       sync.Mutex
	blobs    []string
	err      error
	uploaded chan string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{uploaded: make(chan string, 64)}
}

func (r *fakeRemote) Upload(ctx context.Context, blob string) error {
	r.mu.Lock()
	err := r.err
	if err == nil {
		r.blobs = append(r.blobs, blob)
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}
	select {
	case r.uploaded <- blob:
	default:
	}
	return nil
}

func (r *fakeRemote) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeRemote) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blobs)
}

func (r *fakeRemote) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.blobs) == 0 {
		return ""
	}
	return r.blobs[len(r.blobs)-1]
}

// waitUpload blocks until the next upload or fails the test.
func (r *fakeRemote) waitUpload(t *testing.T) string {
	t.Helper()
	select {
	case blob := <-r.uploaded:
		return blob
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for upload")
		return ""
	}
}

var errRemoteDown = errors.New("remote down")

// mockProfileStore is a testify mock for ProfileStore.
type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) GetContent(ctx context.Context) (*ProfileContent, error) {
	args := m.Called(ctx)
	content, _ := args.Get(0).(*ProfileContent)
	return content, args.Error(1)
}

func (m *mockProfileStore) SetContent(ctx context.Context, content *ProfileContent) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

// testConfig returns a configuration with short timings suited to tests.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SaveIntervalMin = time.Hour
	cfg.SaveIntervalMax = time.Hour
	cfg.CountPushDelay = 0
	return cfg
}

// completions records completion callbacks.
type completions struct {
	mu  sync.Mutex
	ids []int
}

func (c *completions) fn(id int, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
}

func (c *completions) list() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.ids...)
}

func testMeta(id int) Meta {
	return Meta{ID: id, Module: ModuleGeneric, Title: "Test"}
}

// captureLogger records formatted messages by level.
type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) add(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+fmt.Sprintf(format, v...))
}

func (l *captureLogger) Debug(format string, v ...interface{})                   { l.add("debug", format, v...) }
func (l *captureLogger) Info(format string, v ...interface{})                    { l.add("info", format, v...) }
func (l *captureLogger) Warn(format string, v ...interface{})                    { l.add("warn", format, v...) }
func (l *captureLogger) Error(format string, v ...interface{})                   { l.add("error", format, v...) }
func (l *captureLogger) WithField(key string, v interface{}) runtime.Logger      { return l }
func (l *captureLogger) WithFields(fields map[string]interface{}) runtime.Logger { return l }
func (l *captureLogger) Fields() map[string]interface{}                          { return nil }

// count returns how many entries start with prefix.
func (l *captureLogger) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}
