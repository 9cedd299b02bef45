// ABOUTME: Promotion-intent journal persisted in a local badger store
// ABOUTME: Lets the best-effort RAW flag write be replayed after a crash or failure
package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v3"
)

// Intent states.
const (
	IntentPending = "pending"
	IntentDone    = "done"
)

var intentPrefix = []byte("intent/")

// PromotionIntent records that a RAW row is being promoted. It is written
// before the CORE record is created and marked done only after the RAW status
// flag write succeeds, so an unfinished flag write survives restarts.
type PromotionIntent struct {
	ID        string    `json:"id"`
	RowIndex  int       `json:"row_index"`
	CoreID    string    `json:"core_id,omitempty"`
	Actor     string    `json:"actor"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type IntentJournal struct {
	db *badger.DB
}

// OpenIntentJournal opens the journal at path. An empty path opens an
// in-memory journal (tests, and deployments that accept losing retries on
// restart).
func OpenIntentJournal(path string) (*IntentJournal, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open intent journal: %w", err)
	}
	return &IntentJournal{db: db}, nil
}

func (j *IntentJournal) Close() error {
	return j.db.Close()
}

func (j *IntentJournal) Put(intent PromotionIntent) error {
	intent.UpdatedAt = time.Now()
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = intent.UpdatedAt
	}

	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(intentKey(intent.ID), data)
	})
}

func (j *IntentJournal) Get(id string) (*PromotionIntent, error) {
	var intent PromotionIntent
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(intentKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &intent)
		})
	})
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// MarkDone flips an intent to done.
func (j *IntentJournal) MarkDone(id string) error {
	intent, err := j.Get(id)
	if err != nil {
		return err
	}
	intent.State = IntentDone
	return j.Put(*intent)
}

// Delete removes an intent outright (used when the CORE create itself failed,
// leaving nothing to compensate).
func (j *IntentJournal) Delete(id string) error {
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(intentKey(id))
	})
}

// Pending lists intents whose RAW flag write has not succeeded yet.
func (j *IntentJournal) Pending() ([]PromotionIntent, error) {
	var pending []PromotionIntent
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = intentPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(intentPrefix); it.ValidForPrefix(intentPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var intent PromotionIntent
				if err := json.Unmarshal(val, &intent); err != nil {
					return err
				}
				if intent.State == IntentPending {
					pending = append(pending, intent)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func intentKey(id string) []byte {
	return append(append([]byte{}, intentPrefix...), id...)
}
