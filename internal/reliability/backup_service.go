// Package reliability provides database backup, archival, and cloud
// replication for the service's SQLite databases.
package reliability

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/database"
)

// BackupService creates consistent snapshots of the registered databases
type BackupService struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(databases map[string]*database.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// GetDatabaseNames returns the registered database names, sorted.
func (s *BackupService) GetDatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase snapshots a single database to backupPath.
func (s *BackupService) BackupDatabase(dbName, backupPath string) error {
	db, ok := s.databases[dbName]
	if !ok {
		return fmt.Errorf("database %s not found", dbName)
	}

	s.log.Debug().
		Str("database", dbName).
		Str("backup_path", backupPath).
		Msg("Backing up database")

	// VACUUM INTO produces a fresh copy without WAL files
	if _, err := db.Conn().Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		return fmt.Errorf("VACUUM INTO failed: %w", err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		return fmt.Errorf("failed to stat backup: %w", err)
	}

	s.log.Info().
		Str("database", dbName).
		Int64("size_bytes", info.Size()).
		Msg("Database backup complete")

	return nil
}
