package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
)

// BackendType names a store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = config.BackendSQLite
	MemoryBackend BackendType = config.BackendMemory
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}

// Config selects the store and, optionally, the ledger event broker.
type Config struct {
	Type         BackendType
	SQLiteDBPath string

	// An empty AMQPURL runs without events on either store.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig picks the backend settings out of the process config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case !c.Type.IsValid():
		return fmt.Errorf("unsupported backend type %q (want %s or %s)", c.Type, SQLiteBackend, MemoryBackend)
	case c.Type == SQLiteBackend && c.SQLiteDBPath == "":
		return errors.New("sqlite backend needs a database path")
	case c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == ""):
		return errors.New("ledger events need both an exchange and a queue")
	}
	return nil
}
