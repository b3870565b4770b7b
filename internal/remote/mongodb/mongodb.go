// Package mongodb implements the remote identity and expense-collection
// ports on a MongoDB database. Identities live in "identities", profiles
// in "users" and mirrored expenses in "gastos".
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"gastos/internal/core"
	"gastos/internal/remote"
)

type Client struct {
	cli        *mongo.Client
	identities *mongo.Collection
	profiles   *mongo.Collection
	expenses   *mongo.Collection
}

type credential struct {
	UID          string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash []byte    `bson:"password"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// Connect dials the MongoDB deployment and pings it before returning.
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := cli.Database(database)
	return &Client{
		cli:        cli,
		identities: db.Collection("identities"),
		profiles:   db.Collection("users"),
		expenses:   db.Collection("gastos"),
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.cli.Disconnect(ctx)
}

func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	err := c.identities.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return "", core.ErrDuplicateUser
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("check identity email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	cred := credential{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := c.identities.InsertOne(ctx, cred); err != nil {
		return "", fmt.Errorf("create identity: %w", err)
	}
	return cred.UID, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var cred credential
	err := c.identities.FindOne(ctx, bson.M{"email": email}).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", core.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("look up identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return "", core.ErrInvalidCredentials
	}
	return cred.UID, nil
}

// SignOut is a no-op: the MongoDB backend holds no server-side session.
func (c *Client) SignOut(context.Context) error { return nil }

func (c *Client) DeleteIdentity(ctx context.Context, uid string) error {
	if _, err := c.identities.DeleteOne(ctx, bson.M{"_id": uid}); err != nil {
		return fmt.Errorf("delete identity %s: %w", uid, err)
	}
	return nil
}

func (c *Client) SetProfile(ctx context.Context, p remote.Profile) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := c.profiles.ReplaceOne(ctx, bson.M{"_id": p.UID}, p, opts); err != nil {
		return fmt.Errorf("set profile %s: %w", p.UID, err)
	}
	return nil
}

func (c *Client) GetProfile(ctx context.Context, uid string) (remote.Profile, error) {
	var p remote.Profile
	err := c.profiles.FindOne(ctx, bson.M{"_id": uid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return remote.Profile{}, core.ErrUserNotFound
	}
	if err != nil {
		return remote.Profile{}, fmt.Errorf("get profile %s: %w", uid, err)
	}
	return p, nil
}

func (c *Client) FindProfileByUsername(ctx context.Context, username string) (remote.Profile, error) {
	var p remote.Profile
	err := c.profiles.FindOne(ctx, bson.M{"username": username}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return remote.Profile{}, core.ErrUserNotFound
	}
	if err != nil {
		return remote.Profile{}, fmt.Errorf("find profile by username: %w", err)
	}
	return p, nil
}

func (c *Client) ListProfiles(ctx context.Context, limit int) ([]remote.Profile, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := c.profiles.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	var out []remote.Profile
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return out, nil
}

func (c *Client) DeleteProfile(ctx context.Context, uid string) error {
	if _, err := c.profiles.DeleteOne(ctx, bson.M{"_id": uid}); err != nil {
		return fmt.Errorf("delete profile %s: %w", uid, err)
	}
	return nil
}

func (c *Client) Insert(ctx context.Context, d remote.Document) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if _, err := c.expenses.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert expense document: %w", err)
	}
	return nil
}

func (c *Client) ListByOwner(ctx context.Context, uid string) ([]remote.Document, error) {
	cur, err := c.expenses.Find(ctx, bson.M{"uid": uid})
	if err != nil {
		return nil, fmt.Errorf("list expenses for %s: %w", uid, err)
	}
	var out []remote.Document
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	return out, nil
}

func (c *Client) ListAll(ctx context.Context) ([]remote.Document, error) {
	cur, err := c.expenses.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list all expenses: %w", err)
	}
	var out []remote.Document
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, uid string, ts int64) error {
	if _, err := c.expenses.DeleteOne(ctx, bson.M{"uid": uid, "ts": ts}); err != nil {
		return fmt.Errorf("delete expense document: %w", err)
	}
	return nil
}
