package logfs

import (
	"fmt"
	"sort"
)

// Stats summarizes the log.
type Stats struct {
	Head              int64 `json:"head"`
	RegionSize        int64 `json:"region_size"`
	Entries           int   `json:"entries"`
	SupersededEntries int   `json:"superseded_entries"`
	SupersededBytes   int64 `json:"superseded_bytes"`
	InodeNumbers      int   `json:"inode_numbers"`
	LiveInodes        int   `json:"live_inodes"`
	Directories       int   `json:"directories"`
	Files             int   `json:"files"`
}

// Stats walks the log once and counts entries and inode numbers. An inode
// number is live when its current version is not tombstoned.
func (fs *FS) Stats() (Stats, error) {
	head, err := fs.Head()
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Head: head, RegionSize: int64(len(fs.region.Bytes()))}
	current := make(map[InodeNumber]Entry)
	err = fs.Walk(func(e Entry) error {
		s.Entries++
		if prev, ok := current[e.Inode.Number]; ok {
			s.SupersededEntries++
			s.SupersededBytes += prev.Inode.EntrySize()
		}
		current[e.Inode.Number] = e
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	s.InodeNumbers = len(current)
	for _, e := range current {
		if e.Inode.Deleted {
			continue
		}
		s.LiveInodes++
		if e.Inode.IsDir() {
			s.Directories++
		} else {
			s.Files++
		}
	}
	return s, nil
}

// Problem is one inconsistency found by Check.
type Problem struct {
	Offset int64
	Inode  InodeNumber
	Detail string
}

func (p Problem) String() string {
	return fmt.Sprintf("entry at %d (inode %d): %s", p.Offset, p.Inode, p.Detail)
}

// Report is the result of Check.
type Report struct {
	Entries  int
	Problems []Problem
}

// OK reports whether Check found nothing wrong.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Check walks the log and reports structural problems. A log that cannot be
// walked at all is returned as an error wrapping ErrCorruptedLog.
func (fs *FS) Check() (Report, error) {
	var r Report
	current := make(map[InodeNumber]Entry)
	err := fs.Walk(func(e Entry) error {
		if r.Entries == 0 && e.Inode.Number != RootInodeNumber {
			r.add(e, "first entry is not the root directory")
		}
		r.Entries++
		if e.Inode.Number < 0 {
			r.add(e, "negative inode number")
		}
		if e.Inode.IsDir() && int64(e.Inode.Size)%DirEntrySize != 0 {
			r.add(e, fmt.Sprintf("directory size %d is not a multiple of %d", e.Inode.Size, DirEntrySize))
		}
		current[e.Inode.Number] = e
		return nil
	})
	if err != nil {
		return r, err
	}

	root, ok := current[RootInodeNumber]
	if !ok {
		r.Problems = append(r.Problems, Problem{Detail: "no root directory entry"})
		return r, nil
	}
	if !root.Inode.IsDir() {
		r.add(root, "root is not a directory")
	}

	for _, e := range current {
		if !e.Inode.IsDir() {
			continue
		}
		entries, err := fs.dirEntries(e)
		if err != nil {
			return r, err
		}
		seen := make(map[string]bool, len(entries))
		for _, d := range entries {
			if err := ValidateName(d.Name); err != nil {
				r.add(e, fmt.Sprintf("entry %q: %v", d.Name, err))
			}
			if seen[d.Name] {
				r.add(e, fmt.Sprintf("duplicate name %q", d.Name))
			}
			seen[d.Name] = true
			if _, ok := current[d.Number]; !ok {
				r.add(e, fmt.Sprintf("entry %q refers to missing inode %d", d.Name, d.Number))
			}
		}
	}
	sort.SliceStable(r.Problems, func(i, j int) bool {
		return r.Problems[i].Offset < r.Problems[j].Offset
	})
	return r, nil
}

func (r *Report) add(e Entry, detail string) {
	r.Problems = append(r.Problems, Problem{Offset: e.Offset, Inode: e.Inode.Number, Detail: detail})
}
