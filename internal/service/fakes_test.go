package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"mellowmark/internal/domain"
	"mellowmark/internal/readme"
	"mellowmark/internal/repository"
	"mellowmark/internal/storage"
)

var errBoom = errors.New("boom")

type fakeUserRepo struct {
	mu        sync.Mutex
	byName    map[string]*domain.User
	createErr error
	getErr    error
	creates   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byName[user.Username]; ok {
		return fmt.Errorf("insert user: %w", repository.ErrConflict)
	}
	user.ID = fmt.Sprintf("u-%d", len(r.byName)+1)
	cp := *user
	r.byName[user.Username] = &cp
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byName[username]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byName {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

type docKey struct{ owner, title string }

type fakeDocRepo struct {
	mu        sync.Mutex
	docs      map[docKey]*domain.Document
	order     []docKey
	upsertErr error
	findErr   error
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[docKey]*domain.Document)}
}

func (r *fakeDocRepo) Upsert(_ context.Context, ownerID, title, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	k := docKey{ownerID, title}
	if d, ok := r.docs[k]; ok {
		d.Content = content
		return nil
	}
	r.docs[k] = &domain.Document{OwnerID: ownerID, Title: title, Content: content}
	r.order = append(r.order, k)
	return nil
}

func (r *fakeDocRepo) Find(_ context.Context, ownerID, title string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	d, ok := r.docs[docKey{ownerID, title}]
	if !ok {
		return nil, fmt.Errorf("document: %w", repository.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocRepo) List(_ context.Context, ownerID string) ([]domain.DocumentSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.DocumentSummary, 0)
	for _, k := range r.order {
		if k.owner == ownerID {
			out = append(out, domain.DocumentSummary{Title: k.title, CreatedAt: r.docs[k].CreatedAt})
		}
	}
	return out, nil
}

type fakeIssuer struct {
	err error
}

func (f fakeIssuer) Issue(userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + userID, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	objects map[string]string
	err     error
}

func (a *fakeArchive) Put(_ context.Context, key string, body io.Reader, _ storage.PutOptions) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.objects == nil {
		a.objects = make(map[string]string)
	}
	a.objects[key] = string(data)
	return "mem://" + key, nil
}

type fakeSource struct {
	info     *readme.RepoInfo
	files    []string
	infoErr  error
	filesErr error
}

func (f *fakeSource) Repository(ctx context.Context, owner, name string) (*readme.RepoInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeSource) Contents(ctx context.Context, owner, name string) ([]string, error) {
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return f.files, nil
}

type fakeGenerator struct {
	prompt string
	text   string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}
