package mediaio

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// CreateFile creates (or truncates) a local file and attaches it as a
// seekable writer.
func CreateFile(ctx context.Context, path string) (*IO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uri, err := uriFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %q: %w", path, err)
	}
	return &IO{
		uri:    uri,
		writer: &writer{mode: ModeSeekable, dst: file, seeker: file, closer: file},
	}, nil
}

// OpenFile opens a local file and attaches it as a buffered seekable reader.
func OpenFile(ctx context.Context, path string) (*IO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uri, err := uriFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	return &IO{
		uri:    uri,
		reader: newReader(ModeSeekable, file, file, file),
	}, nil
}

// Open opens a resource for reading by URI. Bare paths and file:// URIs are
// served from the local filesystem; every other scheme is rejected.
func Open(ctx context.Context, rawURI string) (*IO, error) {
	path, err := LocalPath(rawURI)
	if err != nil {
		return nil, err
	}
	return OpenFile(ctx, path)
}

// Create opens a resource for writing by URI, following the same scheme
// rules as Open.
func Create(ctx context.Context, rawURI string) (*IO, error) {
	path, err := LocalPath(rawURI)
	if err != nil {
		return nil, err
	}
	return CreateFile(ctx, path)
}

// LocalPath resolves a bare path or file:// URI to a filesystem path.
func LocalPath(rawURI string) (string, error) {
	trimmed := strings.TrimSpace(rawURI)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty URI", ErrURIParse)
	}
	if !strings.Contains(trimmed, "://") {
		return trimmed, nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrURIParse, err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "file":
		if parsed.Path == "" {
			return "", fmt.Errorf("%w: %q has no path", ErrURIParse, rawURI)
		}
		return filepath.FromSlash(parsed.Path), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedScheme, parsed.Scheme)
	}
}

func uriFromPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrURIParse)
	}
	if !utf8.ValidString(path) {
		return "", fmt.Errorf("%w: path %q is not valid UTF-8", ErrURIParse, path)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String(), nil
}
