package usecase

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
	"github.com/wostup/pitchit-api/services/auth-service/internal/repository"
	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/mailer"
)

// memAccountRepo is an in-memory AccountRepository keyed by ObjectID.
type memAccountRepo struct {
	mu       sync.Mutex
	role     auth.Role
	accounts map[bson.ObjectID]model.Account
}

func newMemAccountRepo(role auth.Role) *memAccountRepo {
	return &memAccountRepo{role: role, accounts: map[bson.ObjectID]model.Account{}}
}

func (r *memAccountRepo) Role() auth.Role { return r.role }

func (r *memAccountRepo) CreateAccount(_ context.Context, account *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}

	account.ID = bson.NewObjectID()
	account.Role = r.role
	r.accounts[account.ID] = *account
	return account, nil
}

func (r *memAccountRepo) GetAccount(_ context.Context, id string) (*model.Account, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	return r.find(func(a model.Account) bool { return a.ID == objectID })
}

func (r *memAccountRepo) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	return r.find(func(a model.Account) bool { return a.Email == email })
}

func (r *memAccountRepo) GetAccountByVerificationToken(
	_ context.Context,
	email, tokenHash string,
) (*model.Account, error) {
	return r.find(func(a model.Account) bool {
		return a.VerificationToken != nil && *a.VerificationToken == tokenHash && (email == "" || a.Email == email)
	})
}

func (r *memAccountRepo) SetVerificationToken(
	_ context.Context,
	id bson.ObjectID,
	tokenHash string,
	expiresAt time.Time,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.IsVerified {
		return false, nil
	}
	a.VerificationToken = &tokenHash
	a.VerificationTokenExpires = &expiresAt
	r.accounts[id] = a
	return true, nil
}

func (r *memAccountRepo) MarkVerified(_ context.Context, id bson.ObjectID, tokenHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.VerificationToken == nil || *a.VerificationToken != tokenHash ||
		a.VerificationTokenExpires == nil || !a.VerificationTokenExpires.After(now) {
		return false, nil
	}
	a.IsVerified = true
	a.VerificationToken = nil
	a.VerificationTokenExpires = nil
	r.accounts[id] = a
	return true, nil
}

func (r *memAccountRepo) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	a, ok := r.accounts[objectID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	a.Password = passwordHash
	r.accounts[objectID] = a
	return nil
}

func (r *memAccountRepo) ClearExpiredVerificationTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, a := range r.accounts {
		if a.VerificationTokenExpires != nil && !a.VerificationTokenExpires.After(now) {
			a.VerificationToken = nil
			a.VerificationTokenExpires = nil
			r.accounts[id] = a
			n++
		}
	}
	return n, nil
}

func (r *memAccountRepo) find(match func(model.Account) bool) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if match(a) {
			found := a
			found.Role = r.role
			return &found, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memAccountRepo) snapshot() map[bson.ObjectID]model.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make(map[bson.ObjectID]model.Account, len(r.accounts))
	for id, a := range r.accounts {
		saved[id] = a
	}
	return saved
}

func (r *memAccountRepo) restore(saved map[bson.ObjectID]model.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = saved
}

// get returns a stored copy for assertions.
func (r *memAccountRepo) get(id bson.ObjectID) model.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id]
}

// snapshotTx restores the account repos when fn fails, the way a rolled back
// transaction would.
type snapshotTx struct {
	repos []*memAccountRepo
}

func (s *snapshotTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := make([]map[bson.ObjectID]model.Account, len(s.repos))
	for i, r := range s.repos {
		saved[i] = r.snapshot()
	}

	if err := fn(ctx); err != nil {
		for i, r := range s.repos {
			r.restore(saved[i])
		}
		return err
	}
	return nil
}

type fakeIdentityRepo struct {
	repository.IdentityRepository

	mu         sync.Mutex
	identities []model.Identity
	linkErr    error
}

func (f *fakeIdentityRepo) Link(_ context.Context, identity *model.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.linkErr != nil {
		return f.linkErr
	}

	identity.Key = model.IdentityKey(identity.Provider, identity.Subject)
	for _, i := range f.identities {
		if i.Key == identity.Key {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	f.identities = append(f.identities, *identity)
	return nil
}

func (f *fakeIdentityRepo) Lookup(_ context.Context, provider, subject string) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := model.IdentityKey(provider, subject)
	for _, i := range f.identities {
		if i.Key == key {
			found := i
			return &found, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeIdentityRepo) Touch(context.Context, string, time.Time) error { return nil }

type fakeSessionRepo struct {
	repository.SessionRepository

	mu       sync.Mutex
	sessions map[string]model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]model.Session{}}
}

func (f *fakeSessionRepo) Open(_ context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &s, nil
}

func (f *fakeSessionRepo) Rotate(
	_ context.Context,
	id, presented, next string,
	expiresAt time.Time,
) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok || s.RefreshJTI != presented {
		return nil, mongo.ErrNoDocuments
	}
	s.RefreshJTI = next
	s.ExpiresAt = expiresAt
	s.Generation++
	f.sessions[id] = s
	return &s, nil
}

type fakePasswordResetTokenRepo struct {
	repository.PasswordResetTokenRepository

	mu     sync.Mutex
	tokens map[string]model.PasswordResetToken
}

func newFakePasswordResetTokenRepo() *fakePasswordResetTokenRepo {
	return &fakePasswordResetTokenRepo{tokens: map[string]model.PasswordResetToken{}}
}

func (f *fakePasswordResetTokenRepo) Issue(_ context.Context, token *model.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for jti, t := range f.tokens {
		if t.AccountID == token.AccountID && t.Role == token.Role && !t.Spent() {
			t.SupersededAt = &now
			f.tokens[jti] = t
		}
	}
	f.tokens[token.JTI] = *token
	return nil
}

func (f *fakePasswordResetTokenRepo) Get(_ context.Context, jti string) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[jti]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &t, nil
}

func (f *fakePasswordResetTokenRepo) Redeem(_ context.Context, jti string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[jti]
	if !ok || t.Spent() || !at.Before(t.ExpiresAt) {
		return false, nil
	}
	t.RedeemedAt = &at
	f.tokens[jti] = t
	return true, nil
}

// recordingDispatcher captures dispatched emails synchronously.
type recordingDispatcher struct {
	mu     sync.Mutex
	emails []mailer.Email
	kinds  []string
}

func (d *recordingDispatcher) DispatchEmail(kind string, email mailer.Email) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kinds = append(d.kinds, kind)
	d.emails = append(d.emails, email)
}

func (d *recordingDispatcher) Close() error { return nil }

func (d *recordingDispatcher) last() (string, mailer.Email, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.emails) == 0 {
		return "", mailer.Email{}, false
	}
	return d.kinds[len(d.kinds)-1], d.emails[len(d.emails)-1], true
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.emails)
}
