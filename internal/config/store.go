package config

import (
	"fmt"
	"strings"
)

// Store selects the backend holding the article read model.
type Store struct {
	Driver    StoreDriver `env:"STORE_DRIVER" envDefault:"POSTGRES"`
	SQLiteDSN string      `env:"SQLITE_DSN" envDefault:"file:catalogue.db?_foreign_keys=on&_journal_mode=WAL"`

	Postgres Postgres
}

type StoreDriver uint8

const (
	StoreDriverPostgres StoreDriver = iota
	StoreDriverSQLite
)

func (d StoreDriver) String() string {
	switch d {
	case StoreDriverPostgres:
		return "POSTGRES"
	case StoreDriverSQLite:
		return "SQLITE"
	default:
		return fmt.Sprintf("StoreDriver(%d)", uint8(d))
	}
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *StoreDriver) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "POSTGRES", "POSTGRESQL":
		*d = StoreDriverPostgres
	case "SQLITE", "SQLITE3":
		*d = StoreDriverSQLite
	default:
		return fmt.Errorf("unknown store driver: %s", text)
	}
	return nil
}

func (d StoreDriver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
