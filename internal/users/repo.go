package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("user not found")

// Querier is the part of *pgxpool.Pool the repo needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	db Querier
}

func NewRepo(db Querier) *Repo {
	return &Repo{db: db}
}

type User struct {
	ID          string    `json:"id"`
	FirebaseUID string    `json:"firebaseUid"`
	Email       *string   `json:"email,omitempty"`
	DisplayName *string   `json:"displayName,omitempty"`
	PhotoURL    *string   `json:"photoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
	PhotoURL    string
}

// EnsureUser upserts by firebase uid and returns the internal user id.
// Empty fields never overwrite stored values.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (string, error) {
	if u.FirebaseUID == "" {
		return "", fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into users (firebase_uid, email, display_name, photo_url, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  photo_url = coalesce(excluded.photo_url, users.photo_url),
  updated_at = now()
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, u.FirebaseUID, u.Email, u.DisplayName, u.PhotoURL).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*User, error) {
	const q = `
select id::text, firebase_uid, email, display_name, photo_url, created_at, updated_at
from users
where id = $1::uuid;
`
	var u User
	err := r.db.QueryRow(ctx, q, id).Scan(&u.ID, &u.FirebaseUID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
