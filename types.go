package extjson

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
	"weak"
)

// Date is a calendar date without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsValid reports whether d names a real day between years 1 and 9999.
func (d Date) IsValid() bool {
	return validDate(d.Year, int(d.Month), d.Day) == nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// TimeOfDay is a wall-clock time with an optional zone.
type TimeOfDay struct {
	Hour        int
	Minute      int
	Second      int
	Microsecond int

	// Location is nil for a time without a zone.
	Location *time.Location

	// Fold disambiguates repeated wall times during a backward transition (0 or 1).
	Fold int
}

// TimeOfDayOf returns the wall clock of t, keeping t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Microsecond: t.Nanosecond() / 1000,
		Location:    t.Location(),
	}
}

// Equal compares wall clock, fold and zone. Zones are equal when they share a
// name and current offset, so a fixed zone restored from the wire matches its source.
func (t TimeOfDay) Equal(u TimeOfDay) bool {
	if t.Hour != u.Hour || t.Minute != u.Minute || t.Second != u.Second ||
		t.Microsecond != u.Microsecond || t.Fold != u.Fold {
		return false
	}
	return SameZone(t.Location, u.Location)
}

func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Microsecond != 0 {
		s += fmt.Sprintf(".%06d", t.Microsecond)
	}
	if t.Location != nil {
		s += " " + t.Location.String()
	}
	return s
}

// SameZone reports whether two locations currently share a zone name and offset.
// Two nil locations are the same; nil never matches a non-nil location.
func SameZone(a, b *time.Location) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	now := time.Now()
	an, ao := now.In(a).Zone()
	bn, bo := now.In(b).Zone()
	return an == bn && ao == bo
}

// Set is a mutable mathematical set of comparable values.
type Set map[any]struct{}

// NewSet returns a set of members. Duplicates collapse.
// It panics if a member is not comparable, as a map key would.
func NewSet(members ...any) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add inserts m.
func (s Set) Add(m any) {
	s[m] = struct{}{}
}

// Remove deletes m.
func (s Set) Remove(m any) {
	delete(s, m)
}

// Contains reports whether m is a member.
func (s Set) Contains(m any) bool {
	_, ok := s[m]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// Members returns the members in a stable order.
func (s Set) Members() []any {
	return sortedMembers(s)
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(o Set) bool {
	return equalMembers(s, o)
}

// Freeze returns an immutable copy.
func (s Set) Freeze() FrozenSet {
	return NewFrozenSet(s.Members()...)
}

// FrozenSet is an immutable set of comparable values. Frozen sets holding
// the same members compare equal with ==, so a FrozenSet can be a member of
// a Set or another FrozenSet, or a map key.
// The zero value is an empty set.
type FrozenSet struct {
	p *frozenMembers
}

// frozenMembers is the shared member table of equal frozen sets.
type frozenMembers struct {
	key string
	m   map[any]struct{}
}

// frozen maps canonical keys to live member tables.
var frozen sync.Map // string -> weak.Pointer[frozenMembers]

// NewFrozenSet returns a frozen set of members. Duplicates collapse.
// It panics if a member is not comparable.
func NewFrozenSet(members ...any) FrozenSet {
	m := make(map[any]struct{}, len(members))
	for _, v := range members {
		m[v] = struct{}{}
	}
	return freeze(m)
}

// freeze takes ownership of m and returns the frozen set holding it, sharing
// the table of an equal live set when there is one.
func freeze(m map[any]struct{}) FrozenSet {
	if len(m) == 0 {
		return FrozenSet{}
	}
	key := canonicalKey(m)
	for {
		v, loaded := frozen.Load(key)
		if loaded {
			if p := v.(weak.Pointer[frozenMembers]).Value(); p != nil {
				if equalMembers(p.m, m) {
					return FrozenSet{p: p}
				}
				// Distinct members printing alike keep a private table.
				return FrozenSet{p: &frozenMembers{key: key, m: m}}
			}
		}
		p := &frozenMembers{key: key, m: m}
		wp := weak.Make(p)
		var stored bool
		if loaded {
			stored = frozen.CompareAndSwap(key, v, wp)
		} else {
			_, lost := frozen.LoadOrStore(key, wp)
			stored = !lost
		}
		if stored {
			runtime.AddCleanup(p, func(wp weak.Pointer[frozenMembers]) {
				frozen.CompareAndDelete(key, wp)
			}, wp)
			return FrozenSet{p: p}
		}
	}
}

func (f FrozenSet) members() map[any]struct{} {
	if f.p == nil {
		return nil
	}
	return f.p.m
}

// Contains reports whether v is a member.
func (f FrozenSet) Contains(v any) bool {
	_, ok := f.members()[v]
	return ok
}

// Len returns the number of members.
func (f FrozenSet) Len() int {
	return len(f.members())
}

// Members returns the members in a stable order.
func (f FrozenSet) Members() []any {
	return sortedMembers(f.members())
}

// Equal reports whether both sets hold the same members.
func (f FrozenSet) Equal(o FrozenSet) bool {
	return f == o || equalMembers(f.members(), o.members())
}

// Thaw returns a mutable copy.
func (f FrozenSet) Thaw() Set {
	return NewSet(f.Members()...)
}

// canonicalKey identifies a member table by the sorted types and keys of
// its members.
func canonicalKey(m map[any]struct{}) string {
	var b strings.Builder
	for _, v := range sortedMembers(m) {
		k := memberKey(v)
		fmt.Fprintf(&b, "%s:%d:%s;", typeName(reflect.TypeOf(v)), len(k), k)
	}
	return b.String()
}

// memberKey orders and identifies a member. Frozen sets use their canonical
// key so the order does not depend on table addresses.
func memberKey(v any) string {
	if f, ok := v.(FrozenSet); ok {
		if f.p == nil {
			return ""
		}
		return f.p.key
	}
	return fmt.Sprintf("%#v", v)
}

func equalMembers(a, b map[any]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// sortedMembers orders members by type name, then formatted value.
func sortedMembers(m map[any]struct{}) []any {
	out := make([]any, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := reflect.TypeOf(out[i]), reflect.TypeOf(out[j])
		if ti != tj {
			return typeName(ti) < typeName(tj)
		}
		if fi, ok := asFloat(out[i]); ok {
			fj, _ := asFloat(out[j])
			return fi < fj
		}
		return memberKey(out[i]) < memberKey(out[j])
	})
	return out
}

// addMember inserts v, rejecting values that cannot be map keys.
func addMember(m map[any]struct{}, v any) error {
	if v != nil && !reflect.ValueOf(v).Comparable() {
		return fmt.Errorf("unhashable member of type %s", typeName(reflect.TypeOf(v)))
	}
	m[v] = struct{}{}
	return nil
}
