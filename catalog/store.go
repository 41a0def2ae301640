package catalog

import (
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// OpenDB opens (or creates) the catalog database and migrates the four
// relations. AutoMigrate also creates the composite unique index the
// upsert protocol relies on.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&FileRecord{}, &PartRecord{}, &ChannelRecord{}, &AttributeRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}

// Store wraps the table store session together with encoder settings.
// The session is supplied by the caller, never pooled or cached here;
// a Store with a nil session reports every Persist as skipped.
type Store struct {
	db            *gorm.DB
	metadataDim   int
	channelDim    int
	schemaVersion int
	debug         bool
	now           func() time.Time
}

type StoreOptions struct {
	// Vector dimensions; zero means the package defaults (384 / 128).
	MetadataDim int
	ChannelDim  int
	// SchemaVersion stamps files rows; zero means 1.
	SchemaVersion int
	Debug         bool
}

func NewStore(db *gorm.DB, opts StoreOptions) *Store {
	if opts.MetadataDim <= 0 {
		opts.MetadataDim = DefaultMetadataDim
	}
	if opts.ChannelDim <= 0 {
		opts.ChannelDim = DefaultChannelDim
	}
	if opts.SchemaVersion <= 0 {
		opts.SchemaVersion = 1
	}
	return &Store{
		db:            db,
		metadataDim:   opts.MetadataDim,
		channelDim:    opts.ChannelDim,
		schemaVersion: opts.SchemaVersion,
		debug:         opts.Debug,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) debugf(format string, args ...any) {
	if s == nil || !s.debug {
		return
	}
	log.Printf(format, args...)
}
