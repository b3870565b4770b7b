// Package remote defines the ports to the optional cloud collaborator: an
// identity service plus a document collection of mirrored expenses. All
// callers treat these with best-effort semantics; a failed remote call is
// logged and never blocks the corresponding local operation.
package remote

import (
	"context"
	"time"
)

// Profile is the "users" collection record keyed by identity id.
type Profile struct {
	UID       string    `bson:"_id" json:"uid"`
	Username  string    `bson:"username" json:"username"`
	Email     string    `bson:"email" json:"email"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Document is one mirrored expense in the "gastos" collection.
type Document struct {
	UID         string    `bson:"uid" json:"uid"`
	Username    string    `bson:"usuario" json:"usuario"`
	Description string    `bson:"desc" json:"desc"`
	Amount      float64   `bson:"monto" json:"monto"`
	Category    string    `bson:"categoria" json:"categoria"`
	Type        string    `bson:"tipo" json:"tipo"`
	Date        time.Time `bson:"fecha" json:"fecha"`
	TS          int64     `bson:"ts" json:"ts"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Ports for the cloud collaborator.
type (
	// Identity covers sign-up, sign-in and the profile records that map
	// identity ids to usernames.
	Identity interface {
		// SignUp creates a remote identity and returns its generated id.
		SignUp(ctx context.Context, email, password string) (uid string, err error)
		// SignIn validates email+password and returns the identity id.
		SignIn(ctx context.Context, email, password string) (uid string, err error)
		// SignOut terminates the remote session, if the backend has one.
		SignOut(ctx context.Context) error
		// DeleteIdentity removes the identity itself.
		DeleteIdentity(ctx context.Context, uid string) error

		SetProfile(ctx context.Context, p Profile) error
		GetProfile(ctx context.Context, uid string) (Profile, error)
		// FindProfileByUsername resolves a bare username to its profile.
		// Returns core.ErrUserNotFound when no profile matches.
		FindProfileByUsername(ctx context.Context, username string) (Profile, error)
		ListProfiles(ctx context.Context, limit int) ([]Profile, error)
		DeleteProfile(ctx context.Context, uid string) error
	}

	// ExpenseCollection is the mirrored expense store, queryable by owner
	// id and by timestamp.
	ExpenseCollection interface {
		Insert(ctx context.Context, d Document) error
		ListByOwner(ctx context.Context, uid string) ([]Document, error)
		ListAll(ctx context.Context) ([]Document, error)
		// Delete removes the document matching owner id and timestamp.
		// A missing document is not an error.
		Delete(ctx context.Context, uid string, ts int64) error
	}
)
