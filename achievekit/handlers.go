package achievekit

import (
	"fmt"
	"slices"
)

const (
	chatChannelTell        = "tell"
	achievementUpdateLabel = "achievement_update"
)

func (e *Engine) subscribe() {
	b := e.bus
	e.subscriptions = append(e.subscriptions,
		GagApplied.Subscribe(b, e.onGagApplied),
		GagRemoved.Subscribe(b, e.onGagRemoved),
		RestraintApplied.Subscribe(b, e.onRestraintApplied),
		RestraintRemoved.Subscribe(b, e.onRestraintRemoved),
		PuppeteerOrderSent.Subscribe(b, e.onPuppeteerOrderSent),
		PuppeteerOrderReceived.Subscribe(b, e.onPuppeteerOrderReceived),
		ToyIntensityChanged.Subscribe(b, e.onToyIntensityChanged),
		PlayersNearby.Subscribe(b, e.onPlayersNearby),
		DutyStarted.Subscribe(b, e.onDutyStarted),
		DutyEnded.Subscribe(b, e.onDutyEnded),
		ZoneChanged.Subscribe(b, e.onZoneChanged),
		ChatMessageSent.Subscribe(b, e.onChatMessageSent),
		TriggerFired.Subscribe(b, e.onTriggerFired),
		SafewordUsed.Subscribe(b, e.onSafewordUsed),
		PairOnlineSync.Subscribe(b, e.onPairOnlineSync),
		ShockInstruction.Subscribe(b, e.onShockInstruction),
		FrameworkCheck.Subscribe(b, e.onFrameworkCheck),
	)
}

// gagItem is the duration tracking item for a gag in a given layer.
func gagItem(layer int, gag string) string {
	return fmt.Sprintf("%d_%s", layer, gag)
}

// update applies fn to achievement id. A panic inside fn is logged and the
// rest of the event's fan-out still runs.
func update[T Achievement](e *Engine, d *SaveData, id int, fn func(T)) {
	e.isolate(id, func() { withAchievement(d, id, fn) })
}

func (e *Engine) isolate(id int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			eventHandlerPanics.WithLabelValues(achievementUpdateLabel).Inc()
			e.logger.Error("Update of achievement %d panicked: %v", id, r)
		}
	}()
	fn()
}

func (e *Engine) isSelf(uid string) bool {
	return uid != "" && uid == e.state.LocalUID()
}

func (e *Engine) onGagApplied(layer int, gag, enactor, target string) {
	d := e.cache.Data()
	item := gagItem(layer, gag)
	if e.isSelf(target) {
		update(e, d, IDSilenceOfShame, func(a *ProgressAchievement) { a.IncrementProgress(1) })
		update(e, d, IDGaggedForAnHour, func(a *DurationAchievement) { a.StartTracking(item, target) })
		update(e, d, IDGaggedForADay, func(a *DurationAchievement) { a.StartTracking(item, target) })
		return
	}
	if e.isSelf(enactor) {
		update(e, d, IDShushtainableResource, func(a *ProgressAchievement) { a.IncrementProgress(1) })
		update(e, d, IDGagSpree, func(a *TimedProgressAchievement) { a.IncrementProgress() })
		update(e, d, IDKeptThemQuiet, func(a *DurationAchievement) { a.StartTracking(item, target) })
	}
}

func (e *Engine) onGagRemoved(layer int, gag, enactor, target string) {
	d := e.cache.Data()
	item := gagItem(layer, gag)
	if e.isSelf(target) {
		update(e, d, IDGaggedForAnHour, func(a *DurationAchievement) { a.StopTracking(item, target) })
		update(e, d, IDGaggedForADay, func(a *DurationAchievement) { a.StopTracking(item, target) })
		return
	}
	// Anyone may remove a pair's gag, so the enactor is not checked.
	update(e, d, IDKeptThemQuiet, func(a *DurationAchievement) { a.StopTracking(item, target) })
}

func (e *Engine) onRestraintApplied(set, enactor, target string) {
	d := e.cache.Data()
	if e.isSelf(target) {
		update(e, d, IDFirstTiemers, func(a *ProgressAchievement) { a.IncrementProgress(1) })
		update(e, d, IDBoundForADay, func(a *DurationAchievement) { a.StartTracking(set, target) })
		update(e, d, IDEscapeArtist, func(a *TimeLimitConditionalAchievement) { a.StartTask() })
		update(e, d, IDKnotInTheWay, func(a *TimeRequiredConditionalAchievement) { a.StartTask() })
		update(e, d, IDTouristInChains, func(a *ConditionalAchievement) { a.CheckCompletion() })
		return
	}
	if e.isSelf(enactor) {
		update(e, d, IDBondageBunny, func(a *TimedProgressAchievement) { a.IncrementProgress() })
		update(e, d, IDPairBoundForAnHour, func(a *DurationAchievement) { a.StartTracking(set, target) })
	}
}

func (e *Engine) onRestraintRemoved(set, enactor, target string) {
	d := e.cache.Data()
	if e.isSelf(target) {
		update(e, d, IDBoundForADay, func(a *DurationAchievement) { a.StopTracking(set, target) })
		update(e, d, IDEscapeArtist, func(a *TimeLimitConditionalAchievement) { a.CheckCompletion() })
		update(e, d, IDKnotInTheWay, func(a *TimeRequiredConditionalAchievement) { a.InterruptTask() })
		return
	}
	update(e, d, IDPairBoundForAnHour, func(a *DurationAchievement) { a.StopTracking(set, target) })
}

func (e *Engine) onPuppeteerOrderSent(kind, target string) {
	update(e, e.cache.Data(), IDMasterOfPuppets, func(a *ProgressAchievement) { a.IncrementProgress(1) })
}

func (e *Engine) onPuppeteerOrderReceived(kind, from string) {
	d := e.cache.Data()
	update(e, d, IDPuppetPerformer, func(a *ProgressAchievement) { a.IncrementProgress(1) })
	update(e, d, IDOrderFlurry, func(a *TimedProgressAchievement) { a.IncrementProgress() })
	update(e, d, IDAllTheWorldsAStage, func(a *ConditionalAchievement) { a.CheckCompletion() })
}

func (e *Engine) onToyIntensityChanged(intensity int) {
	update(e, e.cache.Data(), IDMaxedOut, func(a *ThresholdAchievement) { a.UpdateThreshold(intensity) })
}

func (e *Engine) onPlayersNearby(count int) {
	update(e, e.cache.Data(), IDCrowdPleaser, func(a *ConditionalThresholdAchievement) { a.UpdateThreshold(count) })
}

func (e *Engine) onDutyStarted(zone uint16) {
	d := e.cache.Data()
	update(e, d, IDDutyBound, func(a *ConditionalProgressAchievement) { a.BeginConditionalTask(0) })
	update(e, d, IDKnotInTheWay, func(a *TimeRequiredConditionalAchievement) { a.StartTask() })
}

func (e *Engine) onDutyEnded(zone uint16, cleared bool) {
	d := e.cache.Data()
	update(e, d, IDDutyBound, func(a *ConditionalProgressAchievement) {
		if !a.ConditionalTaskBegun() {
			return
		}
		if cleared {
			a.FinishConditionalTask()
		} else {
			a.StartOverDueToInterrupt()
		}
	})
	update(e, d, IDKnotInTheWay, func(a *TimeRequiredConditionalAchievement) { a.InterruptTask() })
}

func (e *Engine) onZoneChanged(zone uint16) {
	d := e.cache.Data()
	if slices.Contains(WorldTourZones, zone) && !d.Visited(zone) {
		d.VisitZone(zone)
		update(e, d, IDWorldTour, func(a *ProgressAchievement) { a.IncrementProgress(1) })
	}
	update(e, d, IDTouristInChains, func(a *ConditionalAchievement) { a.CheckCompletion() })
}

func (e *Engine) onChatMessageSent(channel, message string, garbled bool) {
	d := e.cache.Data()
	if garbled {
		update(e, d, IDSpeechSilverSilenceGolden, func(a *ProgressAchievement) { a.IncrementProgress(1) })
		if channel == chatChannelTell {
			update(e, d, IDWhispersToWhimpers, func(a *ProgressAchievement) { a.IncrementProgress(1) })
		}
	}
	update(e, d, IDHiddenInPlainSight, func(a *ConditionalAchievement) { a.CheckCompletion() })
}

func (e *Engine) onTriggerFired(kind, enactor string) {
	update(e, e.cache.Data(), IDTriggerHappy, func(a *ProgressAchievement) { a.IncrementProgress(1) })
}

func (e *Engine) onSafewordUsed(uid string) {
	update(e, e.cache.Data(), IDSafetyFirst, func(a *ProgressAchievement) { a.IncrementProgress(1) })
}

// onPairOnlineSync closes intervals for uid whose item is no longer active,
// covering stop events missed while either side was offline.
func (e *Engine) onPairOnlineSync(uid string, activeItems []string) {
	for _, a := range e.cache.Data().durations() {
		e.isolate(a.ID(), func() { a.CleanupTracking(uid, activeItems) })
	}
}

func (e *Engine) onShockInstruction(target string, opCode, intensity, durationMs int, from string) {
	d := e.cache.Data()
	if e.isSelf(target) {
		update(e, d, IDShockingExperience, func(a *ProgressAchievement) { a.IncrementProgress(1) })
		return
	}
	if e.isSelf(from) {
		update(e, d, IDRemoteController, func(a *ProgressAchievement) { a.IncrementProgress(1) })
	}
}

func (e *Engine) onFrameworkCheck() {
	d := e.cache.Data()
	update(e, d, IDKnotInTheWay, func(a *TimeRequiredConditionalAchievement) { a.CheckCompletion() })
	update(e, d, IDEscapeArtist, func(a *TimeLimitConditionalAchievement) { a.CheckCompletion() })
	for _, a := range d.durations() {
		e.isolate(a.ID(), a.CheckCompletion)
	}
}
