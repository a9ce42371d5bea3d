package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type userDocument struct {
	ID           string    `firestore:"id"`
	Email        string    `firestore:"email"`
	EmailKey     string    `firestore:"email_key"`
	Name         string    `firestore:"name"`
	Role         string    `firestore:"role"`
	Department   string    `firestore:"department"`
	PasswordHash string    `firestore:"password_hash"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserDocument(u *model.User) *userDocument {
	return &userDocument{
		ID:           u.ID,
		Email:        u.Email,
		EmailKey:     emailKey(u.Email),
		Name:         u.Name,
		Role:         u.Role.String(),
		Department:   u.Department,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func fromUserDocument(d *userDocument) *model.User {
	return &model.User{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		Role:         types.Role(d.Role),
		Department:   d.Department,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

type userRepository struct {
	client     *firestore.Client
	collection string
}

func (r *userRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

func (r *userRepository) byEmail(email string) firestore.Query {
	return r.client.Collection(r.collection).Where("email_key", "==", emailKey(email)).Limit(1)
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(r.byEmail(created.Email))
		defer iter.Stop()

		_, err := iter.Next()
		if err == nil {
			return goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", created.Email))
		}
		if err != iterator.Done {
			return goerr.Wrap(err, "failed to query user by email")
		}
		return tx.Create(r.doc(created.ID), toUserDocument(&created))
	})
	if err != nil {
		return nil, wrapCreateErr(err, "user", created.ID)
	}
	return &created, nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	return getDoc(ctx, r.doc(id), "user", fromUserDocument)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := listDocs(r.byEmail(email).Documents(ctx), "user", fromUserDocument)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}
	return users[0], nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	return listDocs(iter, "user", fromUserDocument)
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	result, err := r.client.Collection(r.collection).NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count users")
	}

	v, ok := result["count"]
	if !ok {
		return 0, goerr.New("count missing from aggregation result")
	}
	switch n := v.(type) {
	case int64:
		return int(n), nil
	default:
		count, ok := v.(interface{ GetIntegerValue() int64 })
		if !ok {
			return 0, goerr.New("unexpected count type", goerr.V("value", v))
		}
		return int(count.GetIntegerValue()), nil
	}
}
