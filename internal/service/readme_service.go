package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mellowmark/internal/domain"
	"mellowmark/internal/readme"
	"mellowmark/internal/repository"
)

// DefaultReadmeTimeout bounds one README generation end to end.
const DefaultReadmeTimeout = 60 * time.Second

// RepositorySource reads repository metadata from a code host.
type RepositorySource interface {
	Repository(ctx context.Context, owner, name string) (*readme.RepoInfo, error)
	Contents(ctx context.Context, owner, name string) ([]string, error)
}

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ReadmeService drafts a README for a repository and stores it as a document.
type ReadmeService interface {
	Generate(ctx context.Context, ownerID, repoURL string) (*domain.Document, error)
}

type readmeService struct {
	source    RepositorySource
	generator TextGenerator
	docs      repository.DocumentRepository
	timeout   time.Duration
}

// NewReadmeService wires the collaborators. A nil generator makes every call
// fail with ErrReadmeUnavailable.
func NewReadmeService(source RepositorySource, generator TextGenerator, docs repository.DocumentRepository, timeout time.Duration) ReadmeService {
	if timeout <= 0 {
		timeout = DefaultReadmeTimeout
	}
	return &readmeService{
		source:    source,
		generator: generator,
		docs:      docs,
		timeout:   timeout,
	}
}

func (s *readmeService) Generate(ctx context.Context, ownerID, repoURL string) (*domain.Document, error) {
	owner, name, err := readme.ParseRepositoryURL(repoURL)
	if err != nil {
		return nil, ErrInvalidRepositoryURL
	}
	if s.source == nil || s.generator == nil {
		return nil, ErrReadmeUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		info  *readme.RepoInfo
		files []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = s.source.Repository(gctx, owner, name)
		return err
	})
	g.Go(func() error {
		var err error
		files, err = s.source.Contents(gctx, owner, name)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch repository: %w", err)
	}

	text, err := s.generator.Generate(ctx, readme.BuildPrompt(*info, files))
	if err != nil {
		return nil, fmt.Errorf("generate readme: %w", err)
	}

	title := readme.Title(name)
	if err := s.docs.Upsert(ctx, ownerID, title, text); err != nil {
		return nil, fmt.Errorf("store readme: %w", err)
	}
	return &domain.Document{OwnerID: ownerID, Title: title, Content: text}, nil
}
