// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"rescribe.xyz/rasterdrone"
)

type MetaLister interface {
	ListObjectsWithMeta(bucket string, prefix string) ([]rasterdrone.ObjMeta, error)
	StorageId() string
}

type Remover interface {
	DeleteObjects(bucket string, keys []string) error
	ListObjects(bucket string, prefix string) ([]string, error)
	Log(v ...interface{})
	StorageId() string
}

// StoredSet is a set of files uploaded together under one name
type StoredSet struct {
	Name  string
	Files int
	Date  time.Time
}

// ListStored lists the sets of files in storage, with the date of
// the most recent file in each, oldest first
func ListStored(conn MetaLister) ([]StoredSet, error) {
	objs, err := conn.ListObjectsWithMeta(conn.StorageId(), "")
	if err != nil {
		return nil, fmt.Errorf("Failed to list stored files: %v", err)
	}

	sets := make(map[string]*StoredSet)
	for _, o := range objs {
		name := o.Name
		if i := strings.Index(name, "/"); i >= 0 {
			name = name[:i]
		}
		s, ok := sets[name]
		if !ok {
			s = &StoredSet{Name: name}
			sets[name] = s
		}
		s.Files++
		if o.Date.After(s.Date) {
			s.Date = o.Date
		}
	}

	var list []StoredSet
	for _, s := range sets {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date) {
			return list[i].Name < list[j].Name
		}
		return list[i].Date.Before(list[j].Date)
	})
	return list, nil
}

// RemoveStored deletes every stored file uploaded under name,
// returning how many were removed
func RemoveStored(name string, conn Remover) (int, error) {
	objs, err := conn.ListObjects(conn.StorageId(), name+"/")
	if err != nil {
		return 0, fmt.Errorf("Failed to get list of files for %s: %v", name, err)
	}
	if len(objs) == 0 {
		return 0, fmt.Errorf("No files found for %s", name)
	}

	conn.Log("Deleting", len(objs), "files for", name)
	err = conn.DeleteObjects(conn.StorageId(), objs)
	if err != nil {
		return 0, fmt.Errorf("Failed to delete files for %s: %v", name, err)
	}
	return len(objs), nil
}
