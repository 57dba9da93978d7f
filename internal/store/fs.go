package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
)

// manifestName lists remote documents belonging to a case directory,
// one URL per line, # for comments.
const manifestName = "sources.txt"

// FSDocumentStore treats a directory as a case: every regular file is a
// document in name order, and an optional sources.txt manifest appends
// remote documents fetched over HTTP.
type FSDocumentStore struct {
	root    string
	fetcher *Fetcher
}

// NewFSDocumentStore creates a store rooted at the case directory. The
// fetcher may be nil when the case has no remote sources.
func NewFSDocumentStore(root string, fetcher *Fetcher) *FSDocumentStore {
	return &FSDocumentStore{root: root, fetcher: fetcher}
}

// ListDocuments enumerates the case directory: local files in name order,
// then manifest URLs in file order
func (s *FSDocumentStore) ListDocuments(ctx context.Context, caseID string) ([]model.DocumentRef, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: case directory %s", model.ErrNotFound, s.root)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == manifestName {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var refs []model.DocumentRef
	for _, name := range names {
		refs = append(refs, model.DocumentRef{
			ID:       caseID + "/" + name,
			CaseID:   caseID,
			Location: model.LocationFile,
			Address:  filepath.Join(s.root, name),
		})
	}

	urls, err := readManifest(filepath.Join(s.root, manifestName))
	if err != nil {
		return nil, err
	}
	for _, u := range urls {
		refs = append(refs, model.DocumentRef{
			ID:       caseID + "/" + u,
			CaseID:   caseID,
			Location: model.LocationRemote,
			Address:  u,
		})
	}

	return refs, nil
}

// GetDocument resolves a reference to file content or a remote fetch
func (s *FSDocumentStore) GetDocument(ctx context.Context, ref model.DocumentRef) (model.Document, error) {
	switch ref.Location {
	case model.LocationFile:
		data, err := os.ReadFile(ref.Address)
		if err != nil {
			return model.Document{}, fmt.Errorf("read document: %w", err)
		}

		contentType := "text/plain"
		if ext := strings.ToLower(filepath.Ext(ref.Address)); ext == ".html" || ext == ".htm" {
			contentType = "text/html"
		}

		retrieved := time.Now()
		if info, err := os.Stat(ref.Address); err == nil {
			retrieved = info.ModTime()
		}

		return model.Document{
			Ref:         ref,
			Content:     string(data),
			ContentType: contentType,
			RetrievedAt: retrieved,
		}, nil

	case model.LocationRemote:
		if s.fetcher == nil {
			return model.Document{}, fmt.Errorf("%w: no fetcher configured for remote document %s", model.ErrInvalidState, ref.ID)
		}
		return s.fetcher.Fetch(ctx, ref)

	default:
		return model.Document{}, fmt.Errorf("%w: unsupported document location %q", model.ErrInvalidArgument, ref.Location)
	}
}

// readManifest reads a sources.txt manifest: one URL per line, empty
// lines and # comments skipped, duplicates dropped.
func readManifest(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	return urls, nil
}
