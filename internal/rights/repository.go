package rights

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/unicode/norm"

	"github.com/bastionworks/bastion/internal/platform/db"
	"github.com/bastionworks/bastion/internal/shared"
)

// ErrNoAccess indicates the (user, project) pair has no access row.
var ErrNoAccess = errors.New("no access row")

// Store provides PostgreSQL backed persistence for users, projects and
// access rows. Every method is a single statement, so the store's native
// isolation covers atomicity; the multi-step grant protocol relies on the
// upsert in CreateAccess instead of a wrapping transaction.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a store on the shared pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateUser registers an external identity and returns the internal id.
func (s *Store) CreateUser(ctx context.Context, externalID string, isAdmin bool) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (external_id, is_admin) VALUES ($1, $2) RETURNING id`,
		externalID, isAdmin).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.ErrDuplicateIdentity
		}
		return 0, err
	}
	return id, nil
}

// UserIDByExternalID maps a provider subject to the internal user id.
func (s *Store) UserIDByExternalID(ctx context.Context, externalID string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM users WHERE external_id = $1`, externalID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrUserNotFound
		}
		return 0, err
	}
	return id, nil
}

// IsAdmin reports the global admin bit for an internal user id.
func (s *Store) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := s.pool.QueryRow(ctx,
		`SELECT is_admin FROM users WHERE id = $1`, userID).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, shared.ErrUserNotFound
		}
		return false, err
	}
	return isAdmin, nil
}

// IsAdminByExternalID reports the global admin bit for a provider subject.
func (s *Store) IsAdminByExternalID(ctx context.Context, externalID string) (bool, error) {
	var isAdmin bool
	err := s.pool.QueryRow(ctx,
		`SELECT is_admin FROM users WHERE external_id = $1`, externalID).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, shared.ErrUserNotFound
		}
		return false, err
	}
	return isAdmin, nil
}

// CreateProject inserts a project and returns its id. Names are
// NFC-normalized before the uniqueness check.
func (s *Store) CreateProject(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO projects (name) VALUES ($1) RETURNING id`,
		NormalizeName(name)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.ErrDuplicateName
		}
		return 0, err
	}
	return id, nil
}

// CreateProjectWithOwner inserts a project and the creator's full-rights
// access row in one transaction, so a project can never exist without its
// owner row.
func (s *Store) CreateProjectWithOwner(ctx context.Context, name string, ownerID int64) (int64, error) {
	var id int64
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO projects (name) VALUES ($1) RETURNING id`,
			NormalizeName(name)).Scan(&id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO accesses (project_id, user_id, "read", "write", grant_right)
			 VALUES ($1, $2, true, true, true)`,
			id, ownerID)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.ErrDuplicateName
		}
		return 0, err
	}
	return id, nil
}

// ProjectIDByName resolves a project name to its id.
func (s *Store) ProjectIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM projects WHERE name = $1`, NormalizeName(name)).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrProjectNotFound
		}
		return 0, err
	}
	return id, nil
}

// CreateAccess inserts an access row with the given rights. Insert-if-absent:
// a concurrent duplicate leaves the existing row untouched, which closes the
// check-then-create race between concurrent grants.
func (s *Store) CreateAccess(ctx context.Context, projectID, userID int64, r Rights) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accesses (project_id, user_id, "read", "write", grant_right)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, project_id) DO NOTHING`,
		projectID, userID, r.Read, r.Write, r.Grant)
	return err
}

// GetAccess fetches the access row for a (user, project) pair.
func (s *Store) GetAccess(ctx context.Context, userID, projectID int64) (*Access, error) {
	access := Access{UserID: userID, ProjectID: projectID}
	err := s.pool.QueryRow(ctx,
		`SELECT "read", "write", grant_right FROM accesses
		 WHERE user_id = $1 AND project_id = $2`,
		userID, projectID).Scan(&access.Read, &access.Write, &access.Grant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAccess
		}
		return nil, err
	}
	return &access, nil
}

// AccessByProjectName fetches the caller's access row for a named project.
func (s *Store) AccessByProjectName(ctx context.Context, userID int64, name string) (*Access, error) {
	access := Access{UserID: userID}
	err := s.pool.QueryRow(ctx,
		`SELECT a.project_id, a."read", a."write", a.grant_right
		 FROM accesses a
		 JOIN projects p ON p.id = a.project_id
		 WHERE a.user_id = $1 AND p.name = $2`,
		userID, NormalizeName(name)).Scan(&access.ProjectID, &access.Read, &access.Write, &access.Grant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAccess
		}
		return nil, err
	}
	return &access, nil
}

// HasAccess reports whether an access row exists, regardless of its bits.
// A row with every bit false still counts; rights evaluation is the
// caller's concern.
func (s *Store) HasAccess(ctx context.Context, userID, projectID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accesses WHERE user_id = $1 AND project_id = $2)`,
		userID, projectID).Scan(&exists)
	return exists, err
}

// UpdateAccess replaces the rights triple in place. Returns false when no
// row matched; it never creates one, creation is CreateAccess's job.
func (s *Store) UpdateAccess(ctx context.Context, userID, projectID int64, r Rights) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accesses SET "read" = $3, "write" = $4, grant_right = $5
		 WHERE user_id = $1 AND project_id = $2`,
		userID, projectID, r.Read, r.Write, r.Grant)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RenameProject renames a project by id.
func (s *Store) RenameProject(ctx context.Context, projectID int64, newName string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET name = $2 WHERE id = $1`,
		projectID, NormalizeName(newName))
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrProjectNotFound
	}
	return nil
}

// RenameProjectByName renames a project located by its current name.
// Admin callers use this path to bypass ownership checks.
func (s *Store) RenameProjectByName(ctx context.Context, oldName, newName string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET name = $2 WHERE name = $1`,
		NormalizeName(oldName), NormalizeName(newName))
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrProjectNotFound
	}
	return nil
}

// NormalizeName canonicalizes a project name to NFC so visually identical
// names cannot bypass the uniqueness constraint.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// isUniqueViolation reports whether err is a unique-constraint failure
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
