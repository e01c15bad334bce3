package achievekit

import "time"

// Stable achievement ids. Ids are persisted and must never be reused.
const (
	// Gags
	IDSilenceOfShame            = 1001
	IDShushtainableResource     = 1002
	IDGaggedForAnHour           = 1003
	IDGaggedForADay             = 1004
	IDSpeechSilverSilenceGolden = 1005
	IDWhispersToWhimpers        = 1006
	IDGagSpree                  = 1007
	IDKeptThemQuiet             = 1008

	// Wardrobe
	IDFirstTiemers = 2001
	IDBondageBunny = 2002
	IDBoundForADay = 2003
	IDDutyBound    = 2004
	IDKnotInTheWay = 2005
	IDEscapeArtist = 2006

	// Puppeteer
	IDMasterOfPuppets    = 3001
	IDPuppetPerformer    = 3002
	IDOrderFlurry        = 3003
	IDAllTheWorldsAStage = 3004

	// Toybox
	IDMaxedOut           = 4001
	IDCrowdPleaser       = 4002
	IDTriggerHappy       = 4003
	IDShockingExperience = 4004

	// Remotes
	IDPairBoundForAnHour = 5001
	IDRemoteController   = 5002

	// Hardcore
	IDSafetyFirst = 6001

	// Generic
	IDWorldTour       = 7001
	IDTouristInChains = 7002

	// Secrets
	IDHiddenInPlainSight = 8001
)

// ZoneGoldSaucer is the amusement hub checked by IDTouristInChains.
const ZoneGoldSaucer uint16 = 144

// WorldTourZones are the cities counted by IDWorldTour.
var WorldTourZones = []uint16{128, 129, 130, 131, 132, 133, 418, 419, 628, 819, 820, 962, 963, 1185, 1186}

// RegisterAchievements creates every achievement in d. Predicates read live
// state through state.
func RegisterAchievements(d *SaveData, state StateInspector) {
	// Gags
	d.AddProgress(Meta{ID: IDSilenceOfShame, Module: ModuleGags, Title: "Silence of Shame",
		Description: "Be gagged 19 times"}, 19)
	d.AddProgress(Meta{ID: IDShushtainableResource, Module: ModuleGags, Title: "Shushtainable Resource",
		Description: "Gag your pairs 50 times"}, 50)
	d.AddDuration(Meta{ID: IDGaggedForAnHour, Module: ModuleGags, Title: "Quiet Hour",
		Description: "Spend an hour gagged"}, time.Hour)
	d.AddDuration(Meta{ID: IDGaggedForADay, Module: ModuleGags, Title: "Speechless Day",
		Description: "Spend a full day gagged"}, 24*time.Hour)
	d.AddProgress(Meta{ID: IDSpeechSilverSilenceGolden, Module: ModuleGags, Title: "Speech is Silver, Silence is Golden",
		Description: "Send 500 garbled messages"}, 500)
	d.AddProgress(Meta{ID: IDWhispersToWhimpers, Module: ModuleGags, Title: "Whispers to Whimpers",
		Description: "Send 25 garbled tells"}, 25)
	d.AddTimedProgress(Meta{ID: IDGagSpree, Module: ModuleGags, Title: "Gag Spree",
		Description: "Apply 10 gags within an hour"}, 10, time.Hour)
	d.AddDuration(Meta{ID: IDKeptThemQuiet, Module: ModuleGags, Title: "Kept Them Quiet",
		Description: "Keep your pairs gagged for a combined hour"}, time.Hour)

	// Wardrobe
	d.AddProgress(Meta{ID: IDFirstTiemers, Module: ModuleWardrobe, Title: "First Tiemers",
		Description: "Have a restraint set applied to you"}, 1)
	d.AddTimedProgress(Meta{ID: IDBondageBunny, Module: ModuleWardrobe, Title: "Bondage Bunny",
		Description: "Restrain pairs 5 times within two hours"}, 5, 2*time.Hour)
	d.AddDuration(Meta{ID: IDBoundForADay, Module: ModuleWardrobe, Title: "Bound for a Day",
		Description: "Spend a full day in restraints"}, 24*time.Hour)
	d.AddConditionalProgress(Meta{ID: IDDutyBound, Module: ModuleWardrobe, Title: "Duty Bound",
		Description: "Clear 10 duties while restrained"}, 10, state.IsRestrained)
	d.AddTimeRequiredConditional(Meta{ID: IDKnotInTheWay, Module: ModuleWardrobe, Title: "Knot in the Way",
		Description: "Stay restrained for 30 minutes of a duty"}, 30*time.Minute, func() bool {
		return state.InDuty() && state.IsRestrained()
	})
	d.AddTimeLimitConditional(Meta{ID: IDEscapeArtist, Module: ModuleWardrobe, Title: "Escape Artist",
		Description: "Get out of a restraint set within five minutes"}, 5*time.Minute, func() bool {
		return !state.IsRestrained()
	})

	// Puppeteer
	d.AddProgress(Meta{ID: IDMasterOfPuppets, Module: ModulePuppeteer, Title: "Master of Puppets",
		Description: "Send 100 puppeteer orders"}, 100)
	d.AddProgress(Meta{ID: IDPuppetPerformer, Module: ModulePuppeteer, Title: "Puppet Performer",
		Description: "Follow 50 puppeteer orders"}, 50)
	d.AddTimedProgress(Meta{ID: IDOrderFlurry, Module: ModulePuppeteer, Title: "Order Flurry",
		Description: "Follow 10 orders within an hour"}, 10, time.Hour)
	d.AddConditional(Meta{ID: IDAllTheWorldsAStage, Module: ModulePuppeteer, Title: "All the World's a Stage",
		Description: "Follow an order in a full party"}, func() bool {
		return state.PartySize() >= 8
	})

	// Toybox
	d.AddThreshold(Meta{ID: IDMaxedOut, Module: ModuleToybox, Title: "Maxed Out",
		Description: "Turn a toy up to full intensity"}, 20)
	d.AddConditionalThreshold(Meta{ID: IDCrowdPleaser, Module: ModuleToybox, Title: "Crowd Pleaser",
		Description: "Be gagged with 15 players around you"}, 15, state.IsGagged)
	d.AddProgress(Meta{ID: IDTriggerHappy, Module: ModuleToybox, Title: "Trigger Happy",
		Description: "Fire 25 triggers"}, 25)
	d.AddProgress(Meta{ID: IDShockingExperience, Module: ModuleToybox, Title: "Shocking Experience",
		Description: "Receive 10 shocks"}, 10)

	// Remotes
	d.AddDuration(Meta{ID: IDPairBoundForAnHour, Module: ModuleRemotes, Title: "Remote Binding",
		Description: "Keep your pairs restrained for a combined hour"}, time.Hour)
	d.AddProgress(Meta{ID: IDRemoteController, Module: ModuleRemotes, Title: "Remote Controller",
		Description: "Send 10 shocks to your pairs"}, 10)

	// Hardcore
	d.AddProgress(Meta{ID: IDSafetyFirst, Module: ModuleHardcore, Title: "Safety First",
		Description: "Use your safeword"}, 1)

	// Generic
	d.AddProgress(Meta{ID: IDWorldTour, Module: ModuleGeneric, Title: "World Tour",
		Description: "Visit every major city"}, len(WorldTourZones))
	d.AddConditional(Meta{ID: IDTouristInChains, Module: ModuleGeneric, Title: "Tourist in Chains",
		Description: "Visit the Gold Saucer while restrained"}, func() bool {
		return state.ZoneID() == ZoneGoldSaucer && state.IsRestrained()
	})

	// Secrets
	d.AddConditional(Meta{ID: IDHiddenInPlainSight, Module: ModuleSecrets, Title: "Hidden in Plain Sight",
		Description: "Speak in a duty while gagged and restrained", Secret: true}, func() bool {
		return state.InDuty() && state.IsGagged() && state.IsRestrained()
	})
}
