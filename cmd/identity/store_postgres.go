package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the credential store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Schema/table identifiers are safely quoted to avoid SQL injection via
// identifiers. Errors are mapped to identity sentinel kinds.
//
// Schema management is external (see DESIGN.md); integration tests apply
// the DDL they need into a throwaway schema.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "acadport").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with safe defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "acadport",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// FindByNaturalKey loads the record for (role, key). Lookups are
// case-insensitive; keys are stored uppercase.
func (s *PostgresStore) FindByNaturalKey(ctx context.Context, role Role, key string) (Record, error) {
	const op = "identity.FindByNaturalKey"

	if s == nil || s.pool == nil {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	norm := NormalizeNaturalKey(key)
	if norm == "" {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty natural key"}
	}

	table, keyCol, extraCols := roleTable(role)
	if table == "" {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}

	q := `SELECT id, ` + keyCol + `, secret, ` + extraCols + ` created_at
	        FROM ` + pgIdent(s.schema, table) + `
	       WHERE upper(` + keyCol + `) = $1`

	rec := Record{Role: role}
	row := s.pool.QueryRow(ctx, q, norm)

	var err error
	if role == RoleProctor {
		err = row.Scan(&rec.ID, &rec.NaturalKey, &rec.Secret, &rec.DisplayName, &rec.CreatedAt)
	} else {
		err = row.Scan(&rec.ID, &rec.NaturalKey, &rec.Secret, &rec.CreatedAt)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, NotFoundError{Op: op, Resource: string(role)}
		}
		return Record{}, fmt.Errorf("%s: %w", op, err)
	}

	rec.NaturalKey = NormalizeNaturalKey(rec.NaturalKey)
	return rec, nil
}

// Create inserts a new identity record. Duplicate natural keys map to
// ConflictError via the unique_violation SQLSTATE.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Record, error) {
	const op = "identity.Create"

	if s == nil || s.pool == nil {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}

	norm := NormalizeNaturalKey(in.NaturalKey)
	if norm == "" {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty natural key"}
	}
	if in.Secret == "" {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty secret"}
	}

	table, _, _ := roleTable(in.Role)
	if table == "" {
		return Record{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := NewULID(now)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:          id,
		Role:        in.Role,
		NaturalKey:  norm,
		Secret:      in.Secret,
		DisplayName: in.DisplayName,
		CreatedAt:   now,
	}

	switch in.Role {
	case RoleProctor:
		_, err = s.pool.Exec(ctx,
			`INSERT INTO `+pgIdent(s.schema, "proctors")+` (
			     id, proctor_id, secret, display_name, created_at
			   ) VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, rec.NaturalKey, rec.Secret, rec.DisplayName, rec.CreatedAt,
		)
	default:
		_, err = s.pool.Exec(ctx,
			`INSERT INTO `+pgIdent(s.schema, "students")+` (
			     id, usn, secret, created_at
			   ) VALUES ($1, $2, $3, $4)`,
			rec.ID, rec.NaturalKey, rec.Secret, rec.CreatedAt,
		)
	}
	if err != nil {
		if pgIsUniqueViolation(err) {
			return Record{}, ConflictError{Op: op, Field: naturalKeyField(in.Role)}
		}
		return Record{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

func roleTable(role Role) (table, keyCol, extraCols string) {
	switch role {
	case RoleStudent:
		return "students", "usn", ""
	case RoleProctor:
		return "proctors", "proctor_id", "display_name,"
	default:
		return "", "", ""
	}
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgIsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
