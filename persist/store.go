// Package persist saves and restores list contents through a pebble
// database. A snapshot is immutable and addressed by a v7 UUID: one
// header record plus one TLV record per element, in index order.
package persist

import (
	"encoding/binary"
	goerrors "errors"
	"log/slog"

	"github.com/cespare/xxhash"
	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"github.com/learn-decentralized-systems/toytlv"
	"github.com/pkg/errors"

	"github.com/manuelalexan/xlist"
	"github.com/manuelalexan/xlist/utils"
)

var (
	ErrBadSnapshot = goerrors.New("xlist: bad snapshot record")
	ErrNoSnapshot  = goerrors.New("xlist: no such snapshot")
)

// Key layout:
//
//	'H' + uuid            -> Record('H', count8, xxhash8)
//	'E' + uuid + index8   -> Record('E', element payload)
const keyLen = 1 + 16

type Store struct {
	db  *pebble.DB
	log utils.Logger
}

func Open(dir string, log utils.Logger) (*Store, error) {
	if log == nil {
		log = utils.NewDefaultLogger(slog.LevelInfo)
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot store")
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func headKey(id uuid.UUID) []byte {
	key := make([]byte, 0, keyLen)
	key = append(key, 'H')
	return append(key, id[:]...)
}

func elemKey(id uuid.UUID, n uint64) []byte {
	key := make([]byte, 0, keyLen+8)
	key = append(key, 'E')
	key = append(key, id[:]...)
	return binary.BigEndian.AppendUint64(key, n)
}

// Save writes every element of l as one snapshot and returns its id.
// The list lock is held for the whole read, so the snapshot is a
// consistent cut; the batch commits atomically afterwards.
func Save[T any](s *Store, l *xlist.List[T], enc func(T) []byte) (uuid.UUID, error) {
	if enc == nil {
		panic("xlist: nil element encoder")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "snapshot id")
	}
	b := s.db.NewBatch()
	defer func() { _ = b.Close() }()

	sum := xxhash.New()
	idx := uint64(0)
	n, ferr := l.ForEach(func(x T) error {
		payload := enc(x)
		_, _ = sum.Write(payload)
		if err := b.Set(elemKey(id, idx), toytlv.Record('E', payload), nil); err != nil {
			return err
		}
		idx++
		return nil
	})
	if ferr != nil {
		return uuid.Nil, errors.Wrap(ferr, "save elements")
	}

	var tail [16]byte
	binary.BigEndian.PutUint64(tail[:8], uint64(n))
	binary.BigEndian.PutUint64(tail[8:], sum.Sum64())
	if err := b.Set(headKey(id), toytlv.Record('H', tail[:]), nil); err != nil {
		return uuid.Nil, errors.Wrap(err, "save header")
	}
	if err := s.db.Apply(b, pebble.Sync); err != nil {
		return uuid.Nil, errors.Wrap(err, "commit snapshot")
	}
	s.log.Info("snapshot saved", "snapshot", id.String(), "elements", n)
	return id, nil
}

// Load rebuilds a list from a snapshot, verifying the element count
// and content checksum against the header. Options are passed through
// to the new list, so a loaded list may own its elements.
func Load[T any](s *Store, id uuid.UUID, dec func([]byte) (T, error), opts ...xlist.Option[T]) (*xlist.List[T], error) {
	if dec == nil {
		panic("xlist: nil element decoder")
	}
	hv, closer, err := s.db.Get(headKey(id))
	if err != nil {
		if goerrors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, errors.Wrap(err, "snapshot header")
	}
	body, _ := toytlv.Take('H', hv)
	if len(body) != 16 {
		_ = closer.Close()
		return nil, ErrBadSnapshot
	}
	count := binary.BigEndian.Uint64(body[:8])
	want := binary.BigEndian.Uint64(body[8:])
	_ = closer.Close()

	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: elemKey(id, 0),
		UpperBound: elemKey(id, ^uint64(0)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "snapshot scan")
	}
	defer func() { _ = it.Close() }()

	l := xlist.New[T](opts...)
	l.Reserve(int(count))
	sum := xxhash.New()
	for ok := it.First(); ok; ok = it.Next() {
		payload, _ := toytlv.Take('E', it.Value())
		if payload == nil {
			l.Close()
			return nil, ErrBadSnapshot
		}
		_, _ = sum.Write(payload)
		v, err := dec(payload)
		if err != nil {
			l.Close()
			return nil, errors.Wrap(err, "decode element")
		}
		if !l.Append(v) {
			return nil, xlist.ErrClosed
		}
	}
	if uint64(l.Len()) != count || sum.Sum64() != want {
		l.Close()
		return nil, ErrBadSnapshot
	}
	s.log.Debug("snapshot loaded", "snapshot", id.String(), "elements", count)
	return l, nil
}

// Drop deletes a snapshot and its elements.
func Drop(s *Store, id uuid.UUID) error {
	b := s.db.NewBatch()
	defer func() { _ = b.Close() }()
	if err := b.DeleteRange(elemKey(id, 0), elemKey(id, ^uint64(0)), nil); err != nil {
		return errors.Wrap(err, "drop elements")
	}
	if err := b.Delete(headKey(id), nil); err != nil {
		return errors.Wrap(err, "drop header")
	}
	if err := s.db.Apply(b, pebble.Sync); err != nil {
		return errors.Wrap(err, "commit drop")
	}
	s.log.Info("snapshot dropped", "snapshot", id.String())
	return nil
}

// Snapshots lists every stored snapshot id, oldest first (v7 UUIDs
// sort by creation time).
func Snapshots(s *Store) ([]uuid.UUID, error) {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{'H'},
		UpperBound: []byte{'H' + 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "snapshot list")
	}
	defer func() { _ = it.Close() }()

	var ids []uuid.UUID
	for ok := it.First(); ok; ok = it.Next() {
		key := it.Key()
		if len(key) != keyLen {
			return nil, ErrBadSnapshot
		}
		var id uuid.UUID
		copy(id[:], key[1:])
		ids = append(ids, id)
	}
	return ids, nil
}
