package library

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/logging"
)

// recordMigration upgrades a record read from an older index file in
// place and reports whether it changed anything. Migrations never fail.
type recordMigration struct {
	name  string
	apply func(r *record) bool
}

type recordMigrations []recordMigration

var legacyMigrations = recordMigrations{
	{"md5-to-checksum", migrateMD5},
	{"createdate-to-createDate", migrateCreateDate},
	{"drop-reserved-tags", dropReservedTags},
}

func (migrations recordMigrations) apply(ctx context.Context, r *record) {
	log := logging.From(ctx)
	for _, m := range migrations {
		if m.apply(r) {
			log.Debug("Migrated legacy record", zap.String("filename", r.Filename), zap.String("migration", m.name))
		}
	}
}

// The md5 key predates the checksum map, an existing map wins.
func migrateMD5(r *record) bool {
	if r.MD5 == "" {
		return false
	}
	if len(r.Checksum) == 0 {
		r.Checksum = map[string]string{"md5": r.MD5}
	}
	r.MD5 = ""
	return true
}

func migrateCreateDate(r *record) bool {
	if r.LegacyCreateDate == nil {
		return false
	}
	if r.CreateDate == nil {
		r.CreateDate = r.LegacyCreateDate
	}
	r.LegacyCreateDate = nil
	return true
}

func dropReservedTags(r *record) bool {
	kept := r.Tags[:0]
	for _, tag := range r.Tags {
		if tag == selectedTag || !strings.HasPrefix(tag, ReservedPrefix) {
			kept = append(kept, tag)
		}
	}
	dropped := len(kept) != len(r.Tags)
	r.Tags = kept
	return dropped
}
