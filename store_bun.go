package accounts

import (
	"context"
	"database/sql"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// BunStore is the durable CredentialStore backed by Bun. It layers the
// overwrite-unverified registration policy on top of a generic repository.
type BunStore struct {
	db   *bun.DB
	repo repository.Repository[*User]
}

var _ CredentialStore = (*BunStore)(nil)

// NewBunStore wraps an existing bun.DB.
func NewBunStore(db *bun.DB) *BunStore {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &BunStore{
		db:   db,
		repo: repo,
	}
}

// OpenSQLite opens a sqlite-backed bun.DB suitable for NewBunStore. Use
// "file::memory:?cache=shared" for an ephemeral database.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateUsersTable creates the users table if missing. Kept here so
// embedded deployments do not need a separate migration runner.
func (s *BunStore) CreateUsersTable(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *BunStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := s.db.NewSelect().
		Model(record).
		Where("lower(?TableAlias.email) = ?", emailKey(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows || repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *BunStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows || repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *BunStore) FindByResetTokenHash(ctx context.Context, hash string) (*User, error) {
	if hash == "" {
		return nil, ErrUserNotFound
	}

	record := &User{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.reset_token_hash = ?", hash).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows || repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *BunStore) Create(ctx context.Context, user *User) (*User, error) {
	var created *User

	// clone up front; the store never writes through the caller's pointer
	insert := user.Clone()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &User{}
		err := tx.NewSelect().
			Model(existing).
			Where("lower(?TableAlias.email) = ?", emailKey(insert.Email)).
			Limit(1).
			Scan(ctx)

		switch {
		case err == nil:
			if existing.IsVerified {
				return ErrAccountExists
			}
			// abandoned signup: overwrite in place, keep the original id
			insert.ID = existing.ID
			updated, uerr := s.repo.UpdateTx(ctx, tx, insert, repository.UpdateByID(existing.ID.String()))
			if uerr != nil {
				return uerr
			}
			created = updated
			return nil
		case err == sql.ErrNoRows || repository.IsRecordNotFound(err):
			if insert.ID == uuid.Nil {
				insert.ID = uuid.New()
			}
			record, cerr := s.repo.CreateTx(ctx, tx, insert)
			if cerr != nil {
				return cerr
			}
			created = record
			return nil
		default:
			return err
		}
	})

	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *BunStore) Update(ctx context.Context, user *User) (*User, error) {
	updated, err := s.repo.Update(ctx, user, repository.UpdateByID(user.ID.String()))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return updated, nil
}
