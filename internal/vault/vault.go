// Package vault is the local offline ledger used by the excusectl CLI.
//
// It keeps a device identity, a generation counter, saved favorites, and
// per-excuse ratings in a Badger database. Favorites are keyed by a content
// digest of the excuse text, so the same excuse saved twice collapses into
// one entry regardless of where it came from.
package vault

import (
	"encoding/hex"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Key prefixes.
const (
	metaDeviceIDKey   = "meta:device_id"
	metaGenerationKey = "meta:generation_count"
	favoritePrefix    = "fav:"
	ratingPrefix      = "rating:"
)

// MaxFavorites mirrors the server-side per-device cap.
const MaxFavorites = 10

var (
	// ErrVaultFull is returned when saving past the favorites cap.
	ErrVaultFull = errors.New("favorites limit reached")
	// ErrEntryNotFound is returned when a digest has no entry.
	ErrEntryNotFound = errors.New("entry not found")
)

// Entry is one saved excuse.
type Entry struct {
	Digest              string    `json:"digest"`
	Situation           string    `json:"situation"`
	Tone                string    `json:"tone"`
	Length              string    `json:"length"`
	Excuse              string    `json:"excuse"`
	BelievabilityRating int       `json:"believabilityRating"`
	SavedAt             time.Time `json:"savedAt"`
}

// Vault wraps a Badger database instance.
type Vault struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open creates or opens a vault at the given path.
func Open(path string, logger *slog.Logger) (*Vault, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // The vault is tiny; durability over throughput

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	if logger != nil {
		logger.Debug("vault opened", "path", path)
	}

	return &Vault{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (v *Vault) Close() error {
	return v.db.Close()
}

// Digest returns the content key for an excuse text.
func Digest(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// DeviceID returns this vault's stable device identity, minting one on first use.
func (v *Vault) DeviceID() (string, error) {
	var deviceID string

	err := v.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaDeviceIDKey))
		if err == nil {
			return item.Value(func(val []byte) error {
				deviceID = string(val)
				return nil
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		deviceID = uuid.NewString()
		return txn.Set([]byte(metaDeviceIDKey), []byte(deviceID))
	})
	if err != nil {
		return "", fmt.Errorf("device id: %w", err)
	}
	return deviceID, nil
}

// IncrementGenerations bumps the lifetime generation counter and returns it.
func (v *Vault) IncrementGenerations() (uint64, error) {
	var count uint64

	err := v.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaGenerationKey))
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error {
				count, err = strconv.ParseUint(string(val), 10, 64)
				return err
			}); err != nil {
				return err
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		count++
		return txn.Set([]byte(metaGenerationKey), []byte(strconv.FormatUint(count, 10)))
	})
	if err != nil {
		return 0, fmt.Errorf("increment generations: %w", err)
	}
	return count, nil
}

// GenerationCount reads the lifetime generation counter.
func (v *Vault) GenerationCount() (uint64, error) {
	var count uint64

	err := v.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaGenerationKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			count, err = strconv.ParseUint(string(val), 10, 64)
			return err
		})
	})
	if err != nil {
		return 0, fmt.Errorf("generation count: %w", err)
	}
	return count, nil
}

// SaveFavorite stores an entry keyed by its excuse digest. Saving an existing
// digest overwrites it in place without counting against the cap.
func (v *Vault) SaveFavorite(entry Entry) error {
	if entry.Digest == "" {
		entry.Digest = Digest(entry.Excuse)
	}
	if entry.SavedAt.IsZero() {
		entry.SavedAt = time.Now()
	}

	key := []byte(favoritePrefix + entry.Digest)

	return v.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		isNew := errors.Is(err, badger.ErrKeyNotFound)
		if err != nil && !isNew {
			return err
		}

		if isNew {
			count, err := countPrefix(txn, favoritePrefix)
			if err != nil {
				return err
			}
			if count >= MaxFavorites {
				return ErrVaultFull
			}
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		return txn.Set(key, data)
	})
}

// RemoveFavorite deletes the entry for a digest.
func (v *Vault) RemoveFavorite(digest string) error {
	key := []byte(favoritePrefix + digest)

	return v.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// ListFavorites returns all saved entries, newest first.
func (v *Vault) ListFavorites() ([]Entry, error) {
	var entries []Entry

	err := v.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(favoritePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("unmarshal entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SavedAt.After(entries[j].SavedAt)
	})
	return entries, nil
}

// RateExcuse stores a local 1-5 star rating for an excuse digest.
// Re-rating overwrites the previous value.
func (v *Vault) RateExcuse(digest string, stars int) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", stars)
	}

	key := []byte(ratingPrefix + digest)
	err := v.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(strconv.Itoa(stars)))
	})
	if err != nil {
		return fmt.Errorf("rate excuse: %w", err)
	}
	return nil
}

// GetRating reads the local rating for a digest. ok is false when unrated.
func (v *Vault) GetRating(digest string) (stars int, ok bool, err error) {
	err = v.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ratingPrefix + digest))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return item.Value(func(val []byte) error {
			stars, err = strconv.Atoi(string(val))
			return err
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("get rating: %w", err)
	}
	return stars, ok, nil
}

// countPrefix counts keys under a prefix inside a transaction.
func countPrefix(txn *badger.Txn, prefix string) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		count++
	}
	return count, nil
}
