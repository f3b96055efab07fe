package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/lakfel/fittsStudy/internal/security"
	"github.com/lakfel/fittsStudy/internal/timeutil"
)

// DB is the submovement results store.
type DB struct {
	*sql.DB
	path string
}

// Pragmas applied to every connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
	"foreign_keys(ON)",
}

func dsn(path string) string {
	v := "file:" + path + "?"
	for i, p := range pragmas {
		if i > 0 {
			v += "&"
		}
		v += "_pragma=" + p
	}
	return v
}

// OpenDB opens the database without touching the schema. Use it for the
// migrate subcommand, which manages the schema itself.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &DB{DB: sqlDB, path: path}, nil
}

// NewDB opens the database and applies any pending migrations.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	fsys, err := MigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.MigrateUp(fsys); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string { return db.path }

// Runs returns a run store stamped with wall-clock time.
func (db *DB) Runs() *AnalysisRunStore {
	return NewAnalysisRunStore(db.DB, timeutil.RealClock{})
}

// Segments returns the segment store.
func (db *DB) Segments() *SegmentStore {
	return NewSegmentStore(db.DB)
}

// Kinematics returns the kinematic trace store.
func (db *DB) Kinematics() *KinematicsStore {
	return NewKinematicsStore(db.DB)
}

// Backup writes a compacted copy of the database into dir and returns its
// path.
func (db *DB) Backup(dir string) (string, error) {
	name := fmt.Sprintf("submovements-backup-%d.db", time.Now().UnixNano())
	backupPath := filepath.Join(dir, name)
	if err := security.ValidatePathWithinDirectory(backupPath, dir); err != nil {
		return "", err
	}
	if _, err := db.Exec("VACUUM INTO ?", backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

// AttachAdminRoutes mounts the debug pages on mux: a live SQL console over
// the results store and a gzipped backup download.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://"+filepath.Base(db.path), db.DB, &tailsql.DBOptions{
		Label: "Submovement results",
	})

	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())
	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(db.serveBackup))
}

func (db *DB) serveBackup(w http.ResponseWriter, r *http.Request) {
	backupPath, err := db.Backup(os.TempDir())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.Remove(backupPath); err != nil {
			log.Printf("[db] failed to remove backup file: %v", err)
		}
	}()

	f, err := os.Open(backupPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.gz", filepath.Base(backupPath)))
	w.Header().Set("Content-Type", "application/gzip")

	gz := gzip.NewWriter(w)
	defer gz.Close()
	if _, err := io.Copy(gz, f); err != nil {
		log.Printf("[db] failed to stream backup: %v", err)
	}
}
