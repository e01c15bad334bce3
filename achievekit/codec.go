package achievekit

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"
)

// SaveDataVersion is the schema version written by Encode.
const SaveDataVersion = 2

// ActiveItem is a persisted open duration interval.
type ActiveItem struct {
	Item        string    `json:"Item"`
	UIDAffected string    `json:"UIDAffected"`
	TimeAdded   time.Time `json:"TimeAdded"`
}

// SavedAchievement is the persisted form shared by every variant; each
// variant fills only the fields it owns.
type SavedAchievement struct {
	Type                 AchievementType `json:"Type"`
	AchievementID        int             `json:"AchievementId"`
	IsCompleted          bool            `json:"IsCompleted"`
	CompletedAt          time.Time       `json:"CompletedAt,omitzero"`
	Progress             int64           `json:"Progress"`
	ConditionalTaskBegun bool            `json:"ConditionalTaskBegun"`
	StartTime            time.Time       `json:"StartTime"`
	RecordedDateTimes    []time.Time     `json:"RecordedDateTimes"`
	ActiveItems          []ActiveItem    `json:"ActiveItems"`
}

// SavedFile is the full snapshot of a SaveData container.
type SavedFile struct {
	Version          int                `json:"Version"`
	Achievements     []SavedAchievement `json:"Achievements"`
	VisitedWorldTour map[uint16]bool    `json:"VisitedWorldTour"`
}

// Snapshot captures d without stopping writers. Each achievement is read under
// its own lock, so the snapshot may straddle an in-flight event; at most one
// increment can land on either side of it.
func Snapshot(d *SaveData) *SavedFile {
	file := &SavedFile{
		Version:          SaveDataVersion,
		Achievements:     make([]SavedAchievement, 0, d.Total()),
		VisitedWorldTour: d.VisitedZones(),
	}
	for _, a := range d.All() {
		file.Achievements = append(file.Achievements, a.record())
	}
	return file
}

// Encode serializes d as JSON, gzips it and returns the base64 text sent to
// the remote store.
func Encode(d *SaveData, level int) (string, error) {
	raw, err := json.Marshal(Snapshot(d))
	if err != nil {
		return "", fmt.Errorf("marshal save data: %w", err)
	}
	return compress(raw, level)
}

func compress(raw []byte, level int) (string, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return "", fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return "", fmt.Errorf("compress save data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close gzip: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decompress reverses compress and returns the JSON document.
func decompress(blob string) ([]byte, error) {
	packed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress save data: %w", err)
	}
	return raw, nil
}

// Decode turns a blob produced by Encode, at any supported version, into a
// current-version SavedFile.
func Decode(blob string) (*SavedFile, error) {
	raw, err := decompress(blob)
	if err != nil {
		return nil, err
	}
	return Migrate(raw)
}

func sortActiveItems(items []ActiveItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Item != items[j].Item {
			return items[i].Item < items[j].Item
		}
		if items[i].UIDAffected != items[j].UIDAffected {
			return items[i].UIDAffected < items[j].UIDAffected
		}
		return items[i].TimeAdded.Before(items[j].TimeAdded)
	})
}
