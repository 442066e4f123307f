// Package storage keeps uploaded spec manuals and images on local disk.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrBadPath         = errors.New("invalid blob path")
)

// 嗅探只需要文件头
const sniffLen = 3072

// Kind 上传分类：决定子目录和允许的类型
type Kind struct {
	Dir     string
	MaxSize int64
	allow   func(m *mimetype.MIME) bool
}

var (
	ManualKind = Kind{Dir: "manuals", MaxSize: 25 << 20, allow: func(m *mimetype.MIME) bool {
		return m.Is("application/pdf") || m.Is("text/plain") || isImage(m)
	}}
	ImageKind = Kind{Dir: "spec_images", MaxSize: 8 << 20, allow: isImage}
)

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

// BlobStore 控制器只依赖这个接口
type BlobStore interface {
	Save(ctx context.Context, kind Kind, r io.Reader) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save 校验类型后以 uuid 命名落盘，返回相对路径（如 manuals/<uuid>.pdf）
func (s *LocalStore) Save(ctx context.Context, kind Kind, r io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]
	if n == 0 {
		return "", ErrUnsupportedType
	}
	mt := mimetype.Detect(head)
	if kind.allow != nil && !kind.allow(mt) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	if err := os.MkdirAll(filepath.Join(s.root, kind.Dir), 0o755); err != nil {
		return "", err
	}
	name := path.Join(kind.Dir, uuid.NewString()+mt.Extension())
	f, err := os.Create(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		return "", err
	}

	src := io.MultiReader(bytes.NewReader(head), r)
	if kind.MaxSize > 0 {
		src = io.LimitReader(src, kind.MaxSize+1)
	}
	written, err := io.Copy(f, readerWithContext(ctx, src))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && kind.MaxSize > 0 && written > kind.MaxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return name, nil
}

func (s *LocalStore) resolve(name string) (string, error) {
	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean == "." {
		return "", ErrBadPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *LocalStore) Open(name string) (*os.File, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Delete 文件不存在不算错误
func (s *LocalStore) Delete(name string) error {
	if name == "" {
		return nil
	}
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
