package spec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// maxParallelParse bounds concurrent file parsing in pass 1.
const maxParallelParse = 8

// rawType is an unresolved record as read in pass 1.
type rawType struct {
	kind   Kind
	index  int
	origin string

	common   *TypeRecord
	generic  *TypeRecord
	building *BuildingRecord
	unit     *UnitRecord
	nation   *NationRecord
}

// clone copies the record deeply enough that overlay cannot reach the original.
func (r *rawType) clone() *rawType {
	c := *r
	switch r.kind {
	case KindBuilding:
		b := *r.building
		b.TypeRecord = cloneTypeRecord(r.building.TypeRecord)
		c.building, c.common = &b, &b.TypeRecord
	case KindUnit:
		u := *r.unit
		u.TypeRecord = cloneTypeRecord(r.unit.TypeRecord)
		c.unit, c.common = &u, &u.TypeRecord
	case KindNation:
		n := *r.nation
		n.TypeRecord = cloneTypeRecord(r.nation.TypeRecord)
		c.nation, c.common = &n, &n.TypeRecord
	default:
		g := cloneTypeRecord(*r.generic)
		c.generic, c.common = &g, &g
	}
	return &c
}

func cloneTypeRecord(r TypeRecord) TypeRecord {
	r.Abilities = slices.Clone(r.Abilities)
	r.Modifiers = slices.Clone(r.Modifiers)
	return r
}

// overlay merges a preserve patch of the same kind into r.
func (r *rawType) overlay(p *rawType) {
	switch r.kind {
	case KindBuilding:
		r.building.overlay(p.building)
	case KindUnit:
		r.unit.overlay(p.unit)
	case KindNation:
		r.nation.overlay(p.nation)
	default:
		r.generic.overlay(p.generic)
	}
}

// recordSet is the pass-1 result: records keyed by id, in declaration order.
type recordSet struct {
	byID  map[string]*rawType
	order []*rawType
}

func newRecordSet() *recordSet {
	return &recordSet{byID: make(map[string]*rawType, 256)}
}

func (s *recordSet) add(raw *rawType) error {
	if prev, ok := s.byID[raw.common.ID]; ok {
		return &DuplicateTypeError{TypeID: raw.common.ID, First: prev.origin, Second: raw.origin}
	}
	raw.index = len(s.order)
	s.byID[raw.common.ID] = raw
	s.order = append(s.order, raw)
	return nil
}

// Load reads and resolves a specification from the given inputs.
// Inputs are parsed concurrently; declaration order follows input order.
// On any error no specification is returned.
func Load(ctx context.Context, inputs ...Input) (*Specification, error) {
	docs, err := parseAll(ctx, inputs)
	if err != nil {
		return nil, err
	}

	set := newRecordSet()
	for _, d := range docs {
		for _, raw := range d {
			if err := set.add(raw); err != nil {
				return nil, err
			}
		}
	}

	s, err := build(set)
	if err != nil {
		return nil, err
	}
	slog.Info("specification loaded",
		"inputs", len(inputs),
		"types", s.Len(),
		"building_types", len(s.buildingList),
		"unit_types", len(s.unitList),
		"nation_types", len(s.nationList),
		"abstract", s.abstractCount,
		"checksum", fmt.Sprintf("%016x", s.Checksum()))
	return s, nil
}

// Patch applies additional inputs on top of base and returns a new specification.
//
// A record whose id exists in base replaces that type, unless it carries
// preserve, in which case it is merged into the existing record: explicit
// scalars override, deletions apply to the existing declarations, and new
// features are appended. base is not modified.
func Patch(ctx context.Context, base *Specification, inputs ...Input) (*Specification, error) {
	docs, err := parseAll(ctx, inputs)
	if err != nil {
		return nil, err
	}

	set := newRecordSet()
	for _, raw := range base.records {
		if err := set.add(raw.clone()); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]string)
	for _, d := range docs {
		for _, raw := range d {
			id := raw.common.ID
			if prev, ok := seen[id]; ok {
				return nil, &DuplicateTypeError{TypeID: id, First: prev, Second: raw.origin}
			}
			seen[id] = raw.origin

			existing, ok := set.byID[id]
			switch {
			case !ok:
				if err := set.add(raw); err != nil {
					return nil, err
				}
			case raw.common.Preserve:
				if existing.kind != raw.kind {
					return nil, &InvalidRecordError{TypeID: id, Origin: raw.origin,
						Err: fmt.Errorf("preserve patch of a %s as a %s", existing.kind, raw.kind)}
				}
				existing.overlay(raw)
			default:
				raw.index = existing.index
				set.byID[id] = raw
				set.order[existing.index] = raw
			}
		}
	}

	s, err := build(set)
	if err != nil {
		return nil, err
	}
	slog.Info("specification patched",
		"inputs", len(inputs),
		"types", s.Len(),
		"checksum", fmt.Sprintf("%016x", s.Checksum()))
	return s, nil
}

// parseAll runs pass 1 over every input concurrently.
func parseAll(ctx context.Context, inputs []Input) ([][]*rawType, error) {
	out := make([][]*rawType, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelParse)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := in.ReadAll()
			if err != nil {
				return err
			}
			raws, err := parseDocument(in.Name(), data)
			if err != nil {
				return err
			}
			out[i] = raws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseDocument decodes a YAML stream (possibly several documents).
// Unknown fields are rejected.
func parseDocument(name string, data []byte) ([]*rawType, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var out []*rawType
	for {
		var doc Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing specification %s: %w", name, err)
		}

		for _, r := range doc.Types {
			out = append(out, &rawType{kind: KindGeneric, origin: name, common: r, generic: r})
		}
		for _, r := range doc.BuildingTypes {
			out = append(out, &rawType{kind: KindBuilding, origin: name, common: &r.TypeRecord, building: r})
		}
		for _, r := range doc.UnitTypes {
			out = append(out, &rawType{kind: KindUnit, origin: name, common: &r.TypeRecord, unit: r})
		}
		for _, r := range doc.NationTypes {
			out = append(out, &rawType{kind: KindNation, origin: name, common: &r.TypeRecord, nation: r})
		}
	}

	for _, raw := range out {
		if err := raw.common.validate(); err != nil {
			return nil, &InvalidRecordError{TypeID: raw.common.ID, Origin: name, Err: err}
		}
	}
	return out, nil
}
