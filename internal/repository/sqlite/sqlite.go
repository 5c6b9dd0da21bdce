package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"stemma/internal/domain"
	"stemma/internal/repository"
)

// Repository implements repository.LayoutStore using SQLite
type Repository struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

var _ repository.LayoutStore = (*Repository)(nil)

// New opens (or creates) the database at dbPath. ":memory:" gives a private
// in-memory database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}

	repo := &Repository{db: db, enc: enc, dec: dec}
	if err := repo.migrate(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		return "file::memory:?" + pragmas
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + pragmas + "&_pragma=journal_mode(WAL)"
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS layouts (
		name TEXT PRIMARY KEY,
		scale REAL NOT NULL DEFAULT 1,
		translation_x REAL NOT NULL DEFAULT 0,
		translation_y REAL NOT NULL DEFAULT 0,
		selected TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS layout_nodes (
		layout TEXT NOT NULL,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'person',
		anchor_x REAL NOT NULL,
		anchor_y REAL NOT NULL,
		sex TEXT,
		first_name TEXT,
		last_name TEXT,
		PRIMARY KEY (layout, id),
		FOREIGN KEY (layout) REFERENCES layouts(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS layout_edges (
		layout TEXT NOT NULL,
		seq INTEGER NOT NULL,
		start_id TEXT NOT NULL,
		end_id TEXT NOT NULL,
		PRIMARY KEY (layout, seq),
		FOREIGN KEY (layout) REFERENCES layouts(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS layout_revisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		layout TEXT NOT NULL,
		size INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_layout_nodes_seq ON layout_nodes(layout, seq);
	CREATE INDEX IF NOT EXISTS idx_layout_revisions_layout ON layout_revisions(layout);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveLayout replaces the stored layout called name and archives a revision
func (r *Repository) SaveLayout(ctx context.Context, name string, layout *domain.Layout) error {
	if name == "" {
		return fmt.Errorf("layout name required")
	}
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	archived, size, err := r.compress(layout)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO layouts (name, scale, translation_x, translation_y, selected, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			scale = excluded.scale,
			translation_x = excluded.translation_x,
			translation_y = excluded.translation_y,
			selected = excluded.selected,
			updated_at = excluded.updated_at
	`, name, layout.View.Scale, layout.View.Translation.X, layout.View.Translation.Y,
		idToNull(layout.Selected), now)
	if err != nil {
		return fmt.Errorf("failed to upsert layout: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM layout_nodes WHERE layout = ?`, name); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM layout_edges WHERE layout = ?`, name); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO layout_nodes (layout, seq, id, kind, anchor_x, anchor_y, sex, first_name, last_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, n := range layout.Nodes {
		kind := n.Kind
		if kind == "" {
			kind = domain.NodeKindPerson
		}
		_, err := nodeStmt.ExecContext(ctx, name, i, n.ID.String(), kind, n.Anchor.X, n.Anchor.Y,
			stringToNull(string(n.Sex)), stringToNull(n.FirstName), stringToNull(n.LastName))
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO layout_edges (layout, seq, start_id, end_id) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range layout.Edges {
		if _, err := edgeStmt.ExecContext(ctx, name, i, e.Start.String(), e.End.String()); err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", e, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO layout_revisions (layout, size, data, created_at) VALUES (?, ?, ?, ?)
	`, name, size, archived, now)
	if err != nil {
		return fmt.Errorf("failed to archive revision: %w", err)
	}

	return tx.Commit()
}

// LoadLayout reads the current version of the layout called name
func (r *Repository) LoadLayout(ctx context.Context, name string) (*domain.Layout, error) {
	layout := domain.NewLayout()
	layout.Name = name

	var selected sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT scale, translation_x, translation_y, selected FROM layouts WHERE name = ?
	`, name).Scan(&layout.View.Scale, &layout.View.Translation.X, &layout.View.Translation.Y, &selected)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("layout %q: %w", name, repository.ErrLayoutNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query layout: %w", err)
	}
	if layout.Selected, err = nullToID(selected); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, anchor_x, anchor_y, sex, first_name, last_name
		FROM layout_nodes WHERE layout = ? ORDER BY seq
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, kind         string
			rec              domain.NodeRecord
			sex, first, last sql.NullString
		)
		if err := rows.Scan(&id, &kind, &rec.Anchor.X, &rec.Anchor.Y, &sex, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		if rec.ID, err = domain.ParseNodeID(id); err != nil {
			return nil, err
		}
		rec.Kind = kind
		rec.Sex = domain.Sex(nullToString(sex))
		rec.FirstName = nullToString(first)
		rec.LastName = nullToString(last)
		layout.AddNode(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	// release the only connection before the next query
	rows.Close()

	edgeRows, err := r.db.QueryContext(ctx, `
		SELECT start_id, end_id FROM layout_edges WHERE layout = ? ORDER BY seq
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var start, end string
		if err := edgeRows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		var e domain.Edge
		if e.Start, err = domain.ParseNodeID(start); err != nil {
			return nil, err
		}
		if e.End, err = domain.ParseNodeID(end); err != nil {
			return nil, err
		}
		layout.AddEdge(e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return layout, nil
}

// ListLayouts returns a summary of every stored layout, most recent first
func (r *Repository) ListLayouts(ctx context.Context) ([]repository.LayoutInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.name, l.updated_at,
			(SELECT COUNT(*) FROM layout_nodes n WHERE n.layout = l.name),
			(SELECT COUNT(*) FROM layout_edges e WHERE e.layout = l.name)
		FROM layouts l
		ORDER BY l.updated_at DESC, l.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query layouts: %w", err)
	}
	defer rows.Close()

	infos := make([]repository.LayoutInfo, 0)
	for rows.Next() {
		var info repository.LayoutInfo
		if err := rows.Scan(&info.Name, &info.UpdatedAt, &info.Nodes, &info.Edges); err != nil {
			return nil, fmt.Errorf("failed to scan layout: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteLayout removes a layout and its revisions
func (r *Repository) DeleteLayout(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("layout %q: %w", name, repository.ErrLayoutNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM layout_revisions WHERE layout = ?`, name); err != nil {
		return fmt.Errorf("failed to delete revisions: %w", err)
	}
	return tx.Commit()
}

// Revisions lists the archived versions of a layout, newest first
func (r *Repository) Revisions(ctx context.Context, name string) ([]repository.Revision, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, layout, size, created_at FROM layout_revisions
		WHERE layout = ? ORDER BY id DESC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions: %w", err)
	}
	defer rows.Close()

	revs := make([]repository.Revision, 0)
	for rows.Next() {
		var rev repository.Revision
		if err := rows.Scan(&rev.ID, &rev.Name, &rev.Size, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

// LoadRevision decodes one archived layout version
func (r *Repository) LoadRevision(ctx context.Context, id int64) (*domain.Layout, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM layout_revisions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %d: %w", id, repository.ErrLayoutNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query revision: %w", err)
	}
	return r.decompress(data)
}

// Close releases the database and codec resources
func (r *Repository) Close() error {
	r.dec.Close()
	if err := r.enc.Close(); err != nil {
		r.db.Close()
		return err
	}
	return r.db.Close()
}
