// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrNoImages = errors.New("No images found")

type Uploader interface {
	Log(v ...interface{})
	Upload(bucket string, key string, path string) error
	StorageId() string
}

var imageSuffixes = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImage reports whether a path has the suffix of an image type
// which can be decoded
func IsImage(path string) bool {
	return imageSuffixes[strings.ToLower(filepath.Ext(path))]
}

type fileWalk chan string

// Walk sends the path of all files to the channel, with the exception of
// any file which starts with "."
func (f fileWalk) Walk(path string, info os.FileInfo, err error) error {
	if err != nil {
		return err
	}
	// skip files starting with . to prevent automatically generated
	// files like .DS_Store getting in the way
	if strings.HasPrefix(filepath.Base(path), ".") {
		return nil
	}
	if !info.IsDir() {
		f <- path
	}
	return nil
}

// ImageFiles returns the paths of all files in a directory
// (recursively) with an image suffix, skipping dotfiles, in
// lexical order
func ImageFiles(ctx context.Context, dir string) ([]string, error) {
	walker := make(fileWalk)
	errc := make(chan error, 1)
	go func() {
		errc <- filepath.Walk(dir, walker.Walk)
		close(walker)
	}()

	var paths []string
	for path := range walker {
		if ctx.Err() != nil {
			continue // drain the walker so it can finish
		}
		if IsImage(path) {
			paths = append(paths, path)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := <-errc; err != nil {
		return nil, fmt.Errorf("Failed to read directory %s: %v", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// DecodeImage opens and decodes the image at path
func DecodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Opening image %s failed: %v", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Decoding image %s failed: %v", path, err)
	}
	return img, nil
}

// CheckImages checks that all files with an image suffix in a
// directory are images that can be decoded (skipping dotfiles)
func CheckImages(ctx context.Context, dir string) error {
	paths, err := ImageFiles(ctx, dir)
	if err != nil {
		return err
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, err = DecodeImage(path)
		if err != nil {
			return err
		}
	}

	if len(paths) == 0 {
		return ErrNoImages
	}

	return nil
}

// up uploads each path received from c into conn.StorageId(),
// prefixed with the given prefix and a slash, sending true to done
// once c is closed, or the first error to errc
func up(ctx context.Context, c chan string, done chan bool, conn Uploader, prefix string, errc chan error) {
	for path := range c {
		select {
		case <-ctx.Done():
			for range c {
			} // consume the rest of the receiving channel so it isn't blocked
			errc <- ctx.Err()
			return
		default:
		}
		key := prefix + "/" + filepath.Base(path)
		conn.Log("Uploading", key)
		err := conn.Upload(conn.StorageId(), key, path)
		if err != nil {
			for range c {
			} // consume the rest of the receiving channel so it isn't blocked
			errc <- fmt.Errorf("Failed to upload %s: %v", path, err)
			return
		}
	}

	done <- true
}

// UploadFiles uploads each of paths into conn.StorageId(), prefixed
// with the given prefix and a slash
func UploadFiles(ctx context.Context, paths []string, prefix string, conn Uploader) error {
	c := make(chan string)
	done := make(chan bool)
	errc := make(chan error, 1)
	go up(ctx, c, done, conn, prefix, errc)

	for _, path := range paths {
		c <- path
	}
	close(c)

	select {
	case <-done:
		return nil
	case err := <-errc:
		return err
	}
}

// UploadOutputs uploads all files (except those which start with a
// ".") from a directory into conn.StorageId(), prefixed with the
// given prefix and a slash
func UploadOutputs(ctx context.Context, dir string, prefix string, conn Uploader) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("Failed to read directory %s: %v", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	return UploadFiles(ctx, paths, prefix, conn)
}
