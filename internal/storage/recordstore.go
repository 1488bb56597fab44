package storage

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// ErrImmutableField is returned when a write would change an observation's
// creation timestamp or submitter.
var ErrImmutableField = errors.New("observation creation time and submitter cannot change")

// Publisher is told which collection changed after every successful write.
type Publisher interface {
	Publish(collection string)
}

// EventLogger records store warnings such as dropped records.
// NOTE: mirrors core.EventLogger; defined here because core imports storage.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// RecordStore defines the interface for reading and writing the account and
// observation collections. Reads never fail: absent or malformed data reads
// back as an empty collection. Each write replaces the whole collection, so
// concurrent writers from different sessions resolve as last-write-wins.
type RecordStore interface {
	ListAccounts() []models.Account
	GetAccount(id int64) (models.Account, bool)
	FindAccountByEmail(email string) (models.Account, bool)
	PutAccount(account models.Account) error
	DeleteAccount(id int64) error

	ListObservations() []models.Observation
	GetObservation(id int64) (models.Observation, bool)
	PutObservation(obs models.Observation) error
	DeleteObservation(id int64) error

	CurrentUser() (models.Account, bool)
	SaveCurrentUser(account models.Account) error
	ClearCurrentUser() error
}

// StoreOptions configures a RecordStore. Publisher and Events may be nil.
type StoreOptions struct {
	Publisher    Publisher
	Events       EventLogger
	SeedDefaults bool
}

type mediumRecordStore struct {
	medium Medium
	opts   StoreOptions

	// warned holds, per collection, the hash of the last stored blob whose
	// problems were logged. The same blob is only reported once.
	mu     sync.Mutex
	warned map[string][sha256.Size]byte
}

// NewRecordStore creates a RecordStore over the given medium.
func NewRecordStore(medium Medium, opts StoreOptions) RecordStore {
	return &mediumRecordStore{
		medium: medium,
		opts:   opts,
		warned: make(map[string][sha256.Size]byte),
	}
}

// --- Accounts ---

func (s *mediumRecordStore) ListAccounts() []models.Account {
	accounts := loadCollection(s, CollectionAccounts, decodeAccount)
	if len(accounts) > 0 || !s.opts.SeedDefaults {
		return accounts
	}

	accounts = DefaultAccounts()
	if err := s.writeAccounts(accounts); err != nil {
		// Non-fatal: callers still get the defaults for this read.
		s.warn("store.seed_failed", CollectionAccounts, err)
	}
	return accounts
}

func (s *mediumRecordStore) GetAccount(id int64) (models.Account, bool) {
	for _, a := range s.ListAccounts() {
		if a.ID == id {
			return a, true
		}
	}
	return models.Account{}, false
}

// FindAccountByEmail matches the login key exactly.
func (s *mediumRecordStore) FindAccountByEmail(email string) (models.Account, bool) {
	for _, a := range s.ListAccounts() {
		if a.Email == email {
			return a, true
		}
	}
	return models.Account{}, false
}

func (s *mediumRecordStore) PutAccount(account models.Account) error {
	if err := ValidateAccount(account); err != nil {
		return fmt.Errorf("putting account: %w", err)
	}
	accounts := s.ListAccounts()
	replaced := false
	for i := range accounts {
		if accounts[i].ID == account.ID {
			accounts[i] = account
			replaced = true
			break
		}
	}
	if !replaced {
		accounts = append(accounts, account)
	}
	if err := s.writeAccounts(accounts); err != nil {
		return fmt.Errorf("putting account: %w", err)
	}
	return nil
}

func (s *mediumRecordStore) DeleteAccount(id int64) error {
	accounts := s.ListAccounts()
	kept := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(accounts) {
		return nil
	}
	if err := s.writeAccounts(kept); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}

func (s *mediumRecordStore) writeAccounts(accounts []models.Account) error {
	if accounts == nil {
		accounts = []models.Account{}
	}
	return s.write(CollectionAccounts, accounts)
}

// --- Observations ---

func (s *mediumRecordStore) ListObservations() []models.Observation {
	return loadCollection(s, CollectionObservations, decodeObservation)
}

func (s *mediumRecordStore) GetObservation(id int64) (models.Observation, bool) {
	for _, o := range s.ListObservations() {
		if o.ID == id {
			return o, true
		}
	}
	return models.Observation{}, false
}

// PutObservation prepends a new observation or replaces the stored one with
// the same identity in place. A replacement that changes DateTime or
// SubmittedBy is refused with ErrImmutableField and nothing is written.
func (s *mediumRecordStore) PutObservation(obs models.Observation) error {
	if err := ValidateObservation(obs); err != nil {
		return fmt.Errorf("putting observation: %w", err)
	}
	all := s.ListObservations()
	replaced := false
	for i := range all {
		if all[i].ID != obs.ID {
			continue
		}
		if all[i].DateTime != obs.DateTime || all[i].SubmittedBy != obs.SubmittedBy {
			return fmt.Errorf("putting observation %d: %w", obs.ID, ErrImmutableField)
		}
		all[i] = obs
		replaced = true
		break
	}
	if !replaced {
		all = append([]models.Observation{obs}, all...)
	}
	if err := s.writeObservations(all); err != nil {
		return fmt.Errorf("putting observation: %w", err)
	}
	return nil
}

func (s *mediumRecordStore) DeleteObservation(id int64) error {
	all := s.ListObservations()
	kept := make([]models.Observation, 0, len(all))
	for _, o := range all {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	if err := s.writeObservations(kept); err != nil {
		return fmt.Errorf("deleting observation: %w", err)
	}
	return nil
}

func (s *mediumRecordStore) writeObservations(all []models.Observation) error {
	records := make([]observationRecord, len(all))
	for i, o := range all {
		records[i] = recordFromObservation(o)
	}
	return s.write(CollectionObservations, records)
}

// --- Current session record ---

func (s *mediumRecordStore) CurrentUser() (models.Account, bool) {
	data, err := s.medium.Load(KeyCurrentUser)
	if err != nil {
		s.warn("store.read_failed", KeyCurrentUser, err)
		return models.Account{}, false
	}
	if len(strings.TrimSpace(string(data))) == 0 || strings.TrimSpace(string(data)) == "null" {
		return models.Account{}, false
	}
	account, err := decodeAccount(data)
	if err != nil {
		s.warn("store.record_dropped", KeyCurrentUser, err)
		return models.Account{}, false
	}
	return account, true
}

func (s *mediumRecordStore) SaveCurrentUser(account models.Account) error {
	if err := ValidateAccount(account); err != nil {
		return fmt.Errorf("saving current user: %w", err)
	}
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("saving current user: %w", err)
	}
	if err := s.medium.Store(KeyCurrentUser, data); err != nil {
		return fmt.Errorf("saving current user: %w", err)
	}
	return nil
}

func (s *mediumRecordStore) ClearCurrentUser() error {
	if err := s.medium.Remove(KeyCurrentUser); err != nil {
		return fmt.Errorf("clearing current user: %w", err)
	}
	return nil
}

// --- Helpers ---

// loadCollection reads and decodes a whole collection, degrading to empty on
// any read or parse failure and dropping invalid records. Problems are logged
// once per stored version of the collection.
func loadCollection[T any](s *mediumRecordStore, collection string, decode func(json.RawMessage) (T, error)) []T {
	data, err := s.medium.Load(collection)
	if err != nil {
		s.warn("store.read_failed", collection, err)
		return nil
	}
	items, dropped, err := decodeCollection(data, decode)
	switch {
	case err != nil:
		if s.firstWarning(collection, data) {
			s.warn("store.collection_malformed", collection, err)
		}
		return nil
	case len(dropped) == 0:
		s.forgetWarned(collection)
	case s.firstWarning(collection, data):
		for _, d := range dropped {
			s.warn("store.record_dropped", collection, d)
		}
	}
	return items
}

// firstWarning reports whether the problems of this blob have not been
// logged yet, and marks them as logged.
func (s *mediumRecordStore) firstWarning(collection string, data []byte) bool {
	sum := sha256.Sum256(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.warned[collection]; ok && last == sum {
		return false
	}
	s.warned[collection] = sum
	return true
}

func (s *mediumRecordStore) forgetWarned(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.warned, collection)
}

func (s *mediumRecordStore) write(collection string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", collection, err)
	}
	if err := s.medium.Store(collection, data); err != nil {
		return err
	}
	if s.opts.Publisher != nil {
		s.opts.Publisher.Publish(collection)
	}
	return nil
}

func (s *mediumRecordStore) warn(eventType, collection string, err error) {
	if s.opts.Events == nil {
		return
	}
	_ = s.opts.Events.LogEvent(eventType, map[string]any{
		"collection": collection,
		"error":      err.Error(),
	})
}
