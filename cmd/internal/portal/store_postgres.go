package portal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"acadport/cmd/identity"
)

// PostgresRosterStore implements RosterStore over the same schema the
// credential store writes: students carry a proctor_ref foreign key to
// their proctor's row.
//
// The pgx pool is owned by the caller; this store must NOT close it.
type PostgresRosterStore struct {
	pool   *pgxpool.Pool
	schema string
}

// RosterOption configures the store.
type RosterOption func(*PostgresRosterStore) error

var rosterIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema (default "acadport").
func WithSchema(schema string) RosterOption {
	return func(s *PostgresRosterStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("portal: empty schema")
		}
		if !rosterIdentRe.MatchString(schema) {
			return fmt.Errorf("portal: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresRosterStore constructs a roster store with safe defaults.
func NewPostgresRosterStore(pool *pgxpool.Pool, opts ...RosterOption) (*PostgresRosterStore, error) {
	st := &PostgresRosterStore{
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
		return nil, fmt.Errorf("portal: nil pool")
	}
	return st, nil
}

func (s *PostgresRosterStore) ident(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

// proctorRowID resolves a proctor natural key to its row id.
func (s *PostgresRosterStore) proctorRowID(ctx context.Context, proctorID string) (string, error) {
	norm := identity.NormalizeNaturalKey(proctorID)
	if norm == "" {
		return "", ErrProctorNotFound
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM `+s.ident("proctors")+` WHERE upper(proctor_id) = $1`,
		norm,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProctorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("portal.proctorRowID: %w", err)
	}
	return id, nil
}

func (s *PostgresRosterStore) ListProctees(ctx context.Context, proctorID string) ([]Proctee, error) {
	const op = "portal.ListProctees"

	rowID, err := s.proctorRowID(ctx, proctorID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, usn, created_at
		   FROM `+s.ident("students")+`
		  WHERE proctor_ref = $1
		  ORDER BY usn`,
		rowID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []Proctee
	for rows.Next() {
		var p Proctee
		if err := rows.Scan(&p.ID, &p.USN, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.USN = identity.NormalizeNaturalKey(p.USN)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *PostgresRosterStore) GetProctee(ctx context.Context, proctorID, usn string) (Proctee, error) {
	const op = "portal.GetProctee"

	rowID, err := s.proctorRowID(ctx, proctorID)
	if err != nil {
		return Proctee{}, err
	}

	norm := identity.NormalizeNaturalKey(usn)
	if norm == "" {
		return Proctee{}, ErrNotAssigned
	}

	var p Proctee
	err = s.pool.QueryRow(ctx,
		`SELECT id, usn, created_at
		   FROM `+s.ident("students")+`
		  WHERE proctor_ref = $1 AND upper(usn) = $2`,
		rowID, norm,
	).Scan(&p.ID, &p.USN, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Proctee{}, ErrNotAssigned
	}
	if err != nil {
		return Proctee{}, fmt.Errorf("%s: %w", op, err)
	}

	p.USN = identity.NormalizeNaturalKey(p.USN)
	return p, nil
}
