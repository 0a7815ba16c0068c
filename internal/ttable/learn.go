package ttable

import (
	"encoding/binary"

	badger "github.com/dgraph-io/badger/v4"
)

// LearnTable is a small, disk-persisted table of per-position scores
// carried across games: the root search reads the score of its root
// position to lengthen or shorten its time budget. The score does not
// change the order in which root moves are searched. Unlike Table, it survives
// process restarts, so it is backed by an embedded key-value store
// rather than a plain array.
type LearnTable struct {
	db *badger.DB
}

// OpenLearnTable opens (creating if absent) a learn table at dir. An
// empty dir opens an in-memory-only store, useful for tests.
func OpenLearnTable(dir string) (*LearnTable, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &LearnTable{db: db}, nil
}

// Close flushes and releases the underlying store.
func (l *LearnTable) Close() error {
	return l.db.Close()
}

func learnKey(hash uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], hash)
	return key[:]
}

// Probe returns the learned score for hash and whether one was found.
func (l *LearnTable) Probe(hash uint64) (score int, found bool) {
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(learnKey(hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				score = int(int64(binary.BigEndian.Uint64(val)))
				found = true
			}
			return nil
		})
	})
	if err != nil {
		return 0, false
	}
	return score, found
}

// Store persists a learned score for hash, overwriting any prior value.
func (l *LearnTable) Store(hash uint64, score int) error {
	var val [8]byte
	binary.BigEndian.PutUint64(val[:], uint64(int64(score)))
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(learnKey(hash), val[:])
	})
}

// Adjust nudges the learned score for hash by delta, clamped to
// [-maxMagnitude, maxMagnitude], creating the entry at delta if absent.
// Called once at game end per the concurrency model (§5: "the learn
// table is read on root entry and written once at game end").
func (l *LearnTable) Adjust(hash uint64, delta, maxMagnitude int) error {
	current, _ := l.Probe(hash)
	next := current + delta
	if next > maxMagnitude {
		next = maxMagnitude
	}
	if next < -maxMagnitude {
		next = -maxMagnitude
	}
	return l.Store(hash, next)
}
