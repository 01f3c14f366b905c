// Package uploads sends user media to object storage. Files in one batch
// are uploaded concurrently and tracked individually so a form can keep its
// submit control disabled until every file has settled.
package uploads

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/tellbrandz/tbz/internal/client/storage"
	"github.com/tellbrandz/tbz/internal/logging"
)

// maxParallel bounds concurrent uploads of one batch.
const maxParallel = 4

// File is a local file ready for upload.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FromPath describes the file at path.
func FromPath(path string) (File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if st.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return File{
		Name:        filepath.Base(path),
		Size:        st.Size(),
		ContentType: ct,
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

type Uploader struct {
	store storage.ObjectStore
	names *Namer
	log   logging.Logger
}

func NewUploader(store storage.ObjectStore, log logging.Logger) *Uploader {
	return &Uploader{store: store, names: NewNamer(), log: log.With("component", "uploads")}
}

// Upload stores one file and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, f File) (string, error) {
	key, err := u.names.Name(f.Name)
	if err != nil {
		return "", err
	}

	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer r.Close()

	if err := u.store.Put(ctx, key, r, f.Size, f.ContentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	return u.store.PublicURL(key), nil
}

// UploadAll uploads files concurrently, recording each one in tracker.
// A failing file does not cancel the others. Files the tracker already
// holds a successful upload for are not sent again, so a retry only
// uploads what failed. The returned URLs follow the order of files; the
// error is the first failure, if any.
func (u *Uploader) UploadAll(ctx context.Context, tracker *Tracker, files []File) ([]string, error) {
	urls := make([]string, len(files))

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for i, f := range files {
		i, f := i, f
		if url, ok := tracker.Uploaded(f.Name); ok {
			urls[i] = url
			continue
		}
		id := tracker.Begin(f.Name)
		g.Go(func() error {
			url, err := u.Upload(ctx, f)
			tracker.Finish(id, url, err)
			if err != nil {
				u.log.Warn(ctx, "upload failed", "file", f.Name, "error", err)
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
