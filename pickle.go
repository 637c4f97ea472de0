package extjson

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
)

// zoneRecord is the escape-hatch payload for a timezone. Fixed marks a
// single-offset zone the zone database would not restore under its name.
type zoneRecord struct {
	Zone   string `msgpack:"zone"`
	Offset int    `msgpack:"offset"`
	Fixed  bool   `msgpack:"fixed,omitempty"`
	Sum    []byte `msgpack:"sum,omitempty"`
}

var (
	errPickleSum    = errors.New("pickle signature mismatch")
	errPickleOffset = errors.New("pickle offset disagrees with the object")
)

// encodePickle returns the base64 blob restoring loc exactly. offset is the
// offset of loc at ref.
func encodePickle(loc *time.Location, offset int, ref time.Time, key []byte) (string, error) {
	rec := zoneRecord{Zone: loc.String(), Offset: offset, Fixed: isFixedZone(loc, offset, ref)}
	if len(key) > 0 {
		sum, err := zoneSum(key, rec)
		if err != nil {
			return "", err
		}
		rec.Sum = sum
	}
	b, err := msgpack.Marshal(&rec)
	if err != nil {
		return "", fmt.Errorf("pickle zone %q: %w", rec.Zone, err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// isFixedZone reports whether loc has a single offset that loading its name
// from the zone database would not reproduce.
func isFixedZone(loc *time.Location, offset int, ref time.Time) bool {
	if loc == time.UTC || loc == time.Local {
		return false
	}
	if start, end := ref.In(loc).ZoneBounds(); !start.IsZero() || !end.IsZero() {
		return false
	}
	db, err := time.LoadLocation(loc.String())
	if err != nil {
		return true
	}
	at := ref.In(db)
	_, dbOffset := at.Zone()
	start, end := at.ZoneBounds()
	return dbOffset != offset || !start.IsZero() || !end.IsZero()
}

// decodePickle restores the location carried by blob. offset is the offset
// field of the enclosing object and must match the record. Names the zone
// database does not know are rebuilt as fixed zones with the recorded offset.
func decodePickle(blob string, offset int, key []byte) (*time.Location, error) {
	b, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, err
	}
	var rec zoneRecord
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	if len(key) > 0 {
		want, err := zoneSum(key, rec)
		if err != nil {
			return nil, err
		}
		if subtle.ConstantTimeCompare(want, rec.Sum) != 1 {
			return nil, errPickleSum
		}
	}
	if rec.Offset != offset {
		return nil, errPickleOffset
	}

	if rec.Fixed {
		return time.FixedZone(rec.Zone, rec.Offset), nil
	}
	switch rec.Zone {
	case "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	case "":
		return time.FixedZone("", rec.Offset), nil
	}
	if loc, err := time.LoadLocation(rec.Zone); err == nil {
		return loc, nil
	}
	return time.FixedZone(rec.Zone, rec.Offset), nil
}

// zoneSum is a keyed BLAKE2b-256 over the zone name, offset and fixed flag.
func zoneSum(key []byte, rec zoneRecord) ([]byte, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return nil, fmt.Errorf("pickle key: %w", err)
	}
	h.Write([]byte(rec.Zone))
	var buf [9]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(int64(rec.Offset)))
	if rec.Fixed {
		buf[8] = 1
	}
	h.Write(buf[:])
	return h.Sum(nil), nil
}
