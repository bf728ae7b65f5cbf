package feature

import (
	"fmt"
	"sync"
)

// TraitID identifies an ability or modifier.
//
// Well-known traits are predeclared constants. Traits defined by rule sets or
// mods are interned on first sight (load time), so queries compare integers
// instead of strings.
type TraitID uint32

// Well-known abilities.
const (
	NoTrait TraitID = iota

	AbilityAddTaxToBells
	AbilityAlwaysOfferedPeace
	AbilityAutoProduction
	AbilityAvoidExcessProduction
	AbilityBombard
	AbilityBornInColony
	AbilityBornInIndianSettlement
	AbilityBuild
	AbilityBuildFactory
	AbilityCanBeCaptured
	AbilityCanBeEquipped
	AbilityCaptureUnits
	AbilityCarryGoods
	AbilityCarryUnits
	AbilityConsumeAllOrNothing
	AbilityExpertSoldier
	AbilityExpertsUseConnections
	AbilityIndependenceDeclared
	AbilityMercenaryUnit
	AbilityMultipleAttacks
	AbilityNative
	AbilityNavalUnit
	AbilityPiracy
	AbilityRefUnit
	AbilityRepairUnits
	AbilityRoyalExpeditionaryForce
	AbilityTeach

	// Well-known modifiers.

	ModifierBombardBonus
	ModifierBreedingDivisor
	ModifierBreedingFactor
	ModifierBuildingPriceBonus
	ModifierDefence
	ModifierLandPaymentModifier
	ModifierLineOfSightBonus
	ModifierMinimumColonySize
	ModifierMovementBonus
	ModifierNativeTreasureModifier
	ModifierOffence
	ModifierOffenceAgainst
	ModifierPopularSupport
	ModifierRecruitPriceIncrease
	ModifierTradeBonus
	ModifierVeteranBonus

	wellKnownEnd
)

var wellKnownNames = [...]string{
	NoTrait: "",

	AbilityAddTaxToBells:           "model.ability.addTaxToBells",
	AbilityAlwaysOfferedPeace:      "model.ability.alwaysOfferedPeace",
	AbilityAutoProduction:          "model.ability.autoProduction",
	AbilityAvoidExcessProduction:   "model.ability.avoidExcessProduction",
	AbilityBombard:                 "model.ability.bombard",
	AbilityBornInColony:            "model.ability.bornInColony",
	AbilityBornInIndianSettlement:  "model.ability.bornInIndianSettlement",
	AbilityBuild:                   "model.ability.build",
	AbilityBuildFactory:            "model.ability.buildFactory",
	AbilityCanBeCaptured:           "model.ability.canBeCaptured",
	AbilityCanBeEquipped:           "model.ability.canBeEquipped",
	AbilityCaptureUnits:            "model.ability.captureUnits",
	AbilityCarryGoods:              "model.ability.carryGoods",
	AbilityCarryUnits:              "model.ability.carryUnits",
	AbilityConsumeAllOrNothing:     "model.ability.consumeAllOrNothing",
	AbilityExpertSoldier:           "model.ability.expertSoldier",
	AbilityExpertsUseConnections:   "model.ability.expertsUseConnections",
	AbilityIndependenceDeclared:    "model.ability.independenceDeclared",
	AbilityMercenaryUnit:           "model.ability.mercenaryUnit",
	AbilityMultipleAttacks:         "model.ability.multipleAttacks",
	AbilityNative:                  "model.ability.native",
	AbilityNavalUnit:               "model.ability.navalUnit",
	AbilityPiracy:                  "model.ability.piracy",
	AbilityRefUnit:                 "model.ability.refUnit",
	AbilityRepairUnits:             "model.ability.repairUnits",
	AbilityRoyalExpeditionaryForce: "model.ability.royalExpeditionaryForce",
	AbilityTeach:                   "model.ability.teach",

	ModifierBombardBonus:           "model.modifier.bombardBonus",
	ModifierBreedingDivisor:        "model.modifier.breedingDivisor",
	ModifierBreedingFactor:         "model.modifier.breedingFactor",
	ModifierBuildingPriceBonus:     "model.modifier.buildingPriceBonus",
	ModifierDefence:                "model.modifier.defence",
	ModifierLandPaymentModifier:    "model.modifier.landPaymentModifier",
	ModifierLineOfSightBonus:       "model.modifier.lineOfSightBonus",
	ModifierMinimumColonySize:      "model.modifier.minimumColonySize",
	ModifierMovementBonus:          "model.modifier.movementBonus",
	ModifierNativeTreasureModifier: "model.modifier.nativeTreasureModifier",
	ModifierOffence:                "model.modifier.offence",
	ModifierOffenceAgainst:         "model.modifier.offenceAgainst",
	ModifierPopularSupport:         "model.modifier.popularSupport",
	ModifierRecruitPriceIncrease:   "model.modifier.recruitPriceIncrease",
	ModifierTradeBonus:             "model.modifier.tradeBonus",
	ModifierVeteranBonus:           "model.modifier.veteranBonus",
}

// traitTable is the process-wide trait namespace.
// Well-known ids occupy [1, wellKnownEnd); interned ids follow.
type traitTable struct {
	mu     sync.RWMutex
	names  []string
	byName map[string]TraitID
}

var traits = newTraitTable()

func newTraitTable() *traitTable {
	t := &traitTable{
		names:  make([]string, wellKnownEnd, wellKnownEnd+64),
		byName: make(map[string]TraitID, wellKnownEnd+64),
	}
	for id := TraitID(1); id < wellKnownEnd; id++ {
		t.names[id] = wellKnownNames[id]
		t.byName[wellKnownNames[id]] = id
	}
	return t
}

// Intern returns the TraitID for name, allocating one if name is new.
// The empty name maps to NoTrait.
func Intern(name string) TraitID {
	if name == "" {
		return NoTrait
	}

	traits.mu.RLock()
	id, ok := traits.byName[name]
	traits.mu.RUnlock()
	if ok {
		return id
	}

	traits.mu.Lock()
	defer traits.mu.Unlock()
	if id, ok := traits.byName[name]; ok {
		return id
	}
	id = TraitID(len(traits.names))
	traits.names = append(traits.names, name)
	traits.byName[name] = id
	return id
}

// Lookup returns the TraitID for an already known name.
func Lookup(name string) (TraitID, bool) {
	traits.mu.RLock()
	defer traits.mu.RUnlock()
	id, ok := traits.byName[name]
	return id, ok
}

// IsWellKnown reports whether id is one of the predeclared traits.
func (id TraitID) IsWellKnown() bool {
	return id > NoTrait && id < wellKnownEnd
}

// String returns the trait name, e.g. "model.ability.navalUnit".
func (id TraitID) String() string {
	traits.mu.RLock()
	defer traits.mu.RUnlock()
	if int(id) < len(traits.names) {
		return traits.names[id]
	}
	return fmt.Sprintf("trait(%d)", uint32(id))
}

// MarshalText implements encoding.TextMarshaler.
func (id TraitID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; unknown names are interned.
func (id *TraitID) UnmarshalText(text []byte) error {
	*id = Intern(string(text))
	return nil
}
