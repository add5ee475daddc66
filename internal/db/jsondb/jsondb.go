// Package jsondb keeps user records in memory and persists them
// to a JSON file when the store is closed.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/usersweb/internal/models"
	"github.com/patric-chuzhbe/usersweb/internal/user"
)

// JSONDB is a file-backed user store. Records live in Cache between
// New and Close.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the on-disk layout. Order keeps insertion order of IDs.
type CacheStruct struct {
	Users map[string]*user.User
	Order []string
}

// NewCache returns an empty cache ready for use.
func NewCache() CacheStruct {
	return CacheStruct{
		Users: map[string]*user.User{},
		Order: []string{},
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"Order": []
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New opens fileName, creating an empty database file when it does not exist.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}

	if db.Cache.Users == nil {
		db.Cache.Users = map[string]*user.User{}
	}

	return db, nil
}

// ListUsers returns copies of all records in insertion order.
func (db *JSONDB) ListUsers(ctx context.Context) ([]user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]user.User, 0, len(db.Cache.Order))
	for _, id := range db.Cache.Order {
		if usr, ok := db.Cache.Users[id]; ok {
			result = append(result, *usr)
		}
	}

	return result, nil
}

// CreateUser stores a copy of usr under a fresh UUID and returns that ID.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	record := *usr
	record.ID = uuid.New().String()
	db.Cache.Users[record.ID] = &record
	db.Cache.Order = append(db.Cache.Order, record.ID)

	return record.ID, nil
}

// GetUserByID returns nil and no error when the record does not exist.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, ok := db.Cache.Users[userID]
	if !ok {
		return nil, nil
	}
	found := *usr

	return &found, nil
}

// UpdateUser overwrites the non-nil fields of update. Missing records are ignored.
func (db *JSONDB) UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	usr, ok := db.Cache.Users[userID]
	if !ok {
		return nil
	}
	if update.Name != nil {
		usr.Name = *update.Name
	}
	if update.Email != nil {
		usr.Email = *update.Email
	}
	if update.Password != nil {
		usr.Password = *update.Password
	}

	return nil
}

// DeleteUser removes the record if present.
func (db *JSONDB) DeleteUser(ctx context.Context, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.Cache.Users[userID]; !ok {
		return nil
	}
	delete(db.Cache.Users, userID)
	for i, id := range db.Cache.Order {
		if id == userID {
			db.Cache.Order = append(db.Cache.Order[:i], db.Cache.Order[i+1:]...)
			break
		}
	}

	return nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the cache to the database file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
