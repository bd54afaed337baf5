// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

type DownloadLister interface {
	Download(bucket string, key string, fn string) error
	ListObjects(bucket string, prefix string) ([]string, error)
	Log(v ...interface{})
	StorageId() string
}

// DownloadAll downloads every file uploaded under name into dir,
// returning the paths they were saved to
func DownloadAll(dir string, name string, conn DownloadLister) ([]string, error) {
	objs, err := conn.ListObjects(conn.StorageId(), name+"/")
	if err != nil {
		return nil, fmt.Errorf("Failed to get list of files for %s: %v", name, err)
	}
	if len(objs) == 0 {
		return nil, fmt.Errorf("No files found for %s", name)
	}

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("Failed to create directory %s: %v", dir, err)
	}

	var paths []string
	for _, i := range objs {
		fn := filepath.Join(dir, filepath.Base(i))
		conn.Log("Downloading", i)
		err = conn.Download(conn.StorageId(), i, fn)
		if err != nil {
			return paths, fmt.Errorf("Failed to download file %s: %v", i, err)
		}
		paths = append(paths, fn)
	}
	return paths, nil
}
