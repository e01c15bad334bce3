package achievekit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

// legacyTrackedItem is the version 1 value stored under an item key.
type legacyTrackedItem struct {
	UIDAffected string    `json:"UIDAffected"`
	TimeAdded   time.Time `json:"TimeAdded"`
}

type savedAchievementV1 struct {
	Type                 AchievementType              `json:"Type"`
	AchievementID        int                          `json:"AchievementId"`
	IsCompleted          bool                         `json:"IsCompleted"`
	Progress             int64                        `json:"Progress"`
	ConditionalTaskBegun bool                         `json:"ConditionalTaskBegun"`
	StartTime            time.Time                    `json:"StartTime"`
	RecordedDateTimes    []time.Time                  `json:"RecordedDateTimes"`
	ActiveItems          map[string]legacyTrackedItem `json:"ActiveItems"`
}

type savedFileV1 struct {
	Version          int                  `json:"Version"`
	Achievements     []savedAchievementV1 `json:"Achievements"`
	VisitedWorldTour map[uint16]bool      `json:"VisitedWorldTour"`
}

// Migrate parses a JSON snapshot of any supported version and upgrades it to
// SaveDataVersion.
func Migrate(raw []byte) (*SavedFile, error) {
	var head struct {
		Version int `json:"Version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSaveData, err)
	}

	switch {
	case head.Version == SaveDataVersion:
		file := &SavedFile{}
		if err := json.Unmarshal(raw, file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSaveData, err)
		}
		return normalize(file), nil
	case head.Version == 1:
		old := &savedFileV1{}
		if err := json.Unmarshal(raw, old); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSaveData, err)
		}
		return normalize(migrateV1(old)), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, head.Version)
	}
}

// migrateV1 flattens the item-keyed ActiveItems dictionary into a list.
func migrateV1(old *savedFileV1) *SavedFile {
	file := &SavedFile{
		Version:          SaveDataVersion,
		Achievements:     make([]SavedAchievement, 0, len(old.Achievements)),
		VisitedWorldTour: old.VisitedWorldTour,
	}
	for _, rec := range old.Achievements {
		items := make([]ActiveItem, 0, len(rec.ActiveItems))
		for item, tracked := range rec.ActiveItems {
			items = append(items, ActiveItem{Item: item, UIDAffected: tracked.UIDAffected, TimeAdded: tracked.TimeAdded})
		}
		sortActiveItems(items)
		file.Achievements = append(file.Achievements, SavedAchievement{
			Type:                 rec.Type,
			AchievementID:        rec.AchievementID,
			IsCompleted:          rec.IsCompleted,
			Progress:             rec.Progress,
			ConditionalTaskBegun: rec.ConditionalTaskBegun,
			StartTime:            rec.StartTime,
			RecordedDateTimes:    rec.RecordedDateTimes,
			ActiveItems:          items,
		})
	}
	return file
}

func normalize(file *SavedFile) *SavedFile {
	file.Version = SaveDataVersion
	if file.Achievements == nil {
		file.Achievements = []SavedAchievement{}
	}
	if file.VisitedWorldTour == nil {
		file.VisitedWorldTour = map[uint16]bool{}
	}
	return file
}

// Apply restores file into a freshly registered container. Records for ids
// that are no longer registered, or whose type changed, are skipped with a
// warning; registered achievements missing from file keep their defaults.
// Restoring never fires completion callbacks. It returns the number of
// records skipped.
func Apply(file *SavedFile, d *SaveData, logger runtime.Logger) int {
	skipped := 0
	for _, rec := range file.Achievements {
		a, ok := d.Get(rec.AchievementID)
		if !ok {
			logger.Warn("Dropping unknown achievement %d from save data", rec.AchievementID)
			skipped++
			continue
		}
		if a.Type() != rec.Type {
			logger.Warn("Dropping achievement %d from save data: stored type %s does not match %s", rec.AchievementID, rec.Type, a.Type())
			skipped++
			continue
		}
		a.restore(rec)
	}
	for zone, visited := range file.VisitedWorldTour {
		if visited {
			d.VisitZone(zone)
		}
	}
	return skipped
}
