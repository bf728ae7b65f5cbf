package spec

import "github.com/oss-qm/freecol-sub000/internal/feature"

// NationAttrs are the inheritable scalars of a nation type.
type NationAttrs struct {
	European         bool
	SettlementNumber int
	Aggression       string
}

func defaultNationAttrs() NationAttrs {
	return NationAttrs{Aggression: "average"}
}

// NationType defines the national advantage or native culture of a player.
type NationType struct {
	Type
	NationAttrs
}

func newNationType() *NationType {
	nt := &NationType{NationAttrs: defaultNationAttrs()}
	nt.Kind = KindNation
	nt.ModifierIndex = feature.NationProductionIndex
	nt.concrete = nt
	return nt
}

func newGenericType() *Type {
	return &Type{Kind: KindGeneric, ModifierIndex: feature.DefaultIndex}
}
