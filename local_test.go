// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package rasterdrone

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Storer is the set of storage operations shared by LocalConn
// and AwsConn
type Storer interface {
	Init() error
	StorageId() string
	Upload(bucket string, key string, path string) error
	Download(bucket string, key string, path string) error
	ListObjects(bucket string, prefix string) ([]string, error)
	DeleteObjects(bucket string, keys []string) error
	Log(v ...interface{})
}

func TestStorage(t *testing.T) {
	conns := map[string]Storer{
		"local": &LocalConn{Dir: t.TempDir()},
	}
	if os.Getenv("RASTERDRONE_AWS_TESTS") != "" {
		conns["aws"] = &AwsConn{}
	}

	for name, conn := range conns {
		t.Run(name, func(t *testing.T) {
			err := conn.Init()
			if err != nil {
				t.Fatalf("Could not initialise %s connection: %v", name, err)
			}
			conn.Log("Testing", name, "storage")

			tempDir := t.TempDir()
			contents := []byte("x_m,y_m\n0,1\n")
			upfile := filepath.Join(tempDir, "up.csv")
			err = os.WriteFile(upfile, contents, 0600)
			if err != nil {
				t.Fatalf("Could not create temporary file %s: %v", upfile, err)
			}

			key := "storagetest/logo.csv"
			err = conn.Upload(conn.StorageId(), key, upfile)
			if err != nil {
				t.Fatalf("Could not upload %s: %v", upfile, err)
			}

			list, err := conn.ListObjects(conn.StorageId(), "storagetest/")
			if err != nil {
				t.Fatalf("Could not list objects: %v", err)
			}
			if len(list) != 1 || list[0] != key {
				t.Fatalf("Expected list to be [%s], got %v", key, list)
			}

			list, err = conn.ListObjects(conn.StorageId(), "notthere/")
			if err != nil {
				t.Fatalf("Could not list objects: %v", err)
			}
			if len(list) != 0 {
				t.Fatalf("Expected no objects with prefix notthere/, got %v", list)
			}

			dlfile := filepath.Join(tempDir, "down.csv")
			err = conn.Download(conn.StorageId(), key, dlfile)
			if err != nil {
				t.Fatalf("Could not download %s: %v", key, err)
			}
			dled, err := os.ReadFile(dlfile)
			if err != nil {
				t.Fatalf("Could not read downloaded file %s: %v", dlfile, err)
			}
			if !bytes.Equal(dled, contents) {
				t.Fatalf("Downloaded file differs from expected, expected: '%s', got '%s'", contents, dled)
			}

			err = conn.DeleteObjects(conn.StorageId(), []string{key})
			if err != nil {
				t.Fatalf("Could not delete %s: %v", key, err)
			}
		})
	}
}

func TestLocalDownloadMissing(t *testing.T) {
	conn := &LocalConn{Dir: t.TempDir()}
	err := conn.Init()
	if err != nil {
		t.Fatalf("Could not initialise connection: %v", err)
	}
	path := filepath.Join(t.TempDir(), "missing")
	err = conn.Download(conn.StorageId(), "notpresent", path)
	if err == nil {
		t.Fatalf("Expected an error downloading a missing file")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected no file to be created for a failed download")
	}
}

func TestAwsCreateBucket(t *testing.T) {
	if os.Getenv("RASTERDRONE_AWS_TESTS") == "" {
		t.Skip("RASTERDRONE_AWS_TESTS not set")
	}

	conn := &AwsConn{}
	err := conn.Init()
	if err != nil {
		t.Fatalf("Could not initialise aws connection: %v", err)
	}
	_, err = conn.ListObjects(conn.StorageId(), "")
	if err != nil {
		t.Fatalf("Bucket %s was not created: %v", conn.StorageId(), err)
	}

	// creating it again is fine
	err = conn.CreateBucket(conn.StorageId())
	if err != nil {
		t.Fatalf("Error recreating existing bucket: %v", err)
	}
}
