package achievekit

// StateInspector answers read-only questions about the local player. It is
// implemented by the host's game-state layer.
type StateInspector interface {
	LocalUID() string
	InDuty() bool
	ZoneID() uint16
	PartySize() int
	IsGagged() bool
	IsRestrained() bool
}

const (
	keyGagApplied EventKey = iota + 1
	keyGagRemoved
	keyRestraintApplied
	keyRestraintRemoved
	keyPuppeteerOrderSent
	keyPuppeteerOrderReceived
	keyToyIntensityChanged
	keyPlayersNearby
	keyDutyStarted
	keyDutyEnded
	keyZoneChanged
	keyChatMessageSent
	keyTriggerFired
	keySafewordUsed
	keyPairOnlineSync
	keyShockInstruction
	keyFrameworkCheck
)

var (
	// GagApplied carries gag layer, gag type, enactor UID and target UID.
	GagApplied = Topic4[int, string, string, string]{Key: keyGagApplied, Name: "gag_applied"}

	// GagRemoved carries gag layer, gag type, enactor UID and target UID.
	GagRemoved = Topic4[int, string, string, string]{Key: keyGagRemoved, Name: "gag_removed"}

	// RestraintApplied carries restraint set id, enactor UID and target UID.
	RestraintApplied = Topic3[string, string, string]{Key: keyRestraintApplied, Name: "restraint_applied"}

	// RestraintRemoved carries restraint set id, enactor UID and target UID.
	RestraintRemoved = Topic3[string, string, string]{Key: keyRestraintRemoved, Name: "restraint_removed"}

	// PuppeteerOrderSent carries the order kind and the UID it was sent to.
	PuppeteerOrderSent = Topic2[string, string]{Key: keyPuppeteerOrderSent, Name: "puppeteer_order_sent"}

	// PuppeteerOrderReceived carries the order kind and the sender UID.
	PuppeteerOrderReceived = Topic2[string, string]{Key: keyPuppeteerOrderReceived, Name: "puppeteer_order_received"}

	ToyIntensityChanged = Topic1[int]{Key: keyToyIntensityChanged, Name: "toy_intensity_changed"}
	PlayersNearby       = Topic1[int]{Key: keyPlayersNearby, Name: "players_nearby"}
	DutyStarted         = Topic1[uint16]{Key: keyDutyStarted, Name: "duty_started"}
	ZoneChanged         = Topic1[uint16]{Key: keyZoneChanged, Name: "zone_changed"}
	SafewordUsed        = Topic1[string]{Key: keySafewordUsed, Name: "safeword_used"}

	// DutyEnded carries the zone and whether the duty was cleared.
	DutyEnded = Topic2[uint16, bool]{Key: keyDutyEnded, Name: "duty_ended"}

	// ChatMessageSent carries channel, message and whether it was garbled.
	ChatMessageSent = Topic3[string, string, bool]{Key: keyChatMessageSent, Name: "chat_message_sent"}

	// TriggerFired carries the trigger kind and the enactor UID.
	TriggerFired = Topic2[string, string]{Key: keyTriggerFired, Name: "trigger_fired"}

	// PairOnlineSync carries a user and the items currently active on them.
	// Duration intervals for that user whose item is absent are closed.
	PairOnlineSync = Topic2[string, []string]{Key: keyPairOnlineSync, Name: "pair_online_sync"}

	// ShockInstruction carries target UID, op code, intensity, duration in
	// milliseconds and sender UID.
	ShockInstruction = Topic5[string, int, int, int, string]{Key: keyShockInstruction, Name: "shock_instruction"}

	// FrameworkCheck is published periodically by the host to re-check
	// time based achievements.
	FrameworkCheck = Topic0{Key: keyFrameworkCheck, Name: "framework_check"}
)
