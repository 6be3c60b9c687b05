package store

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vgetd/vgetd/internal/data"
)

// Postgres implements SnapshotStore backed by PostgreSQL, for deployments
// that want job outcomes to survive a process restart. One row per job id,
// upserted on every write.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a store using the provided DSN.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgresFromEnv builds the DSN from component env vars.
// Recognized envs (with defaults):
//
//	POSTGRES_HOST (postgres), POSTGRES_PORT (5432), POSTGRES_DB (vgetd),
//	POSTGRES_USER (vgetd), POSTGRES_PASSWORD (empty), POSTGRES_SSLMODE (disable)
//
// Credentials and db name are URL-encoded to handle special characters.
func NewPostgresFromEnv() (*Postgres, error) {
	host := getenv("POSTGRES_HOST", "postgres")
	port := getenv("POSTGRES_PORT", "5432")
	db := getenv("POSTGRES_DB", "vgetd")
	user := getenv("POSTGRES_USER", "vgetd")
	pass := getenv("POSTGRES_PASSWORD", "")
	ssl := getenv("POSTGRES_SSLMODE", "disable")

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, pass),
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + db,
	}
	q := url.Values{}
	q.Set("sslmode", ssl)
	u.RawQuery = q.Encode()
	return NewPostgres(u.String())
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    progress DOUBLE PRECISION NOT NULL DEFAULT 0,
    speed DOUBLE PRECISION NOT NULL DEFAULT 0,
    eta INTEGER NOT NULL DEFAULT 0,
    message TEXT NOT NULL DEFAULT '',
    folder TEXT NOT NULL DEFAULT '',
    downloaded BIGINT NOT NULL DEFAULT 0,
    total BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

func (p *Postgres) Put(ctx context.Context, id string, snap data.Snapshot) error {
	_, err := p.db.ExecContext(ctx, `
INSERT INTO snapshots (id,status,progress,speed,eta,message,folder,downloaded,total,updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
    status=EXCLUDED.status, progress=EXCLUDED.progress, speed=EXCLUDED.speed,
    eta=EXCLUDED.eta, message=EXCLUDED.message, folder=EXCLUDED.folder,
    downloaded=EXCLUDED.downloaded, total=EXCLUDED.total, updated_at=EXCLUDED.updated_at
`, id, string(snap.Status), snap.Progress, snap.Speed, snap.ETA, snap.Message, snap.Folder, snap.Downloaded, snap.Total, time.Now())
	return err
}

func (p *Postgres) Get(ctx context.Context, id string) (data.Snapshot, bool, error) {
	row := p.db.QueryRowContext(ctx, `SELECT status,progress,speed,eta,message,folder,downloaded,total FROM snapshots WHERE id=$1`, id)
	var (
		snap   data.Snapshot
		status string
	)
	err := row.Scan(&status, &snap.Progress, &snap.Speed, &snap.ETA, &snap.Message, &snap.Folder, &snap.Downloaded, &snap.Total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return data.Snapshot{}, false, nil
		}
		return data.Snapshot{}, false, err
	}
	snap.Status = data.Status(status)
	return snap, true, nil
}
