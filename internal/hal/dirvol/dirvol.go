// Package dirvol implements the storage-volume capability over an
// afero filesystem: a host directory in real runs, an in-memory
// filesystem in tests.
package dirvol

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/picodeck/picodeck/internal/hal"
)

// Volume traverses one directory. Directory positions are indexes into
// the scan snapshot taken by Rewind, so they stay valid only until the
// directory is rewritten and rescanned.
type Volume struct {
	fs  afero.Fs
	dir string

	entries []hal.Entry
	next    int
}

func New(fs afero.Fs, dir string) *Volume {
	return &Volume{fs: fs, dir: dir}
}

// NewDir opens a host directory as a volume.
func NewDir(dir string) *Volume {
	return New(afero.NewOsFs(), dir)
}

func (v *Volume) Rewind() error {
	infos, err := afero.ReadDir(v.fs, v.dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", v.dir, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	v.entries = v.entries[:0]
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		v.entries = append(v.entries, hal.Entry{
			Name:     info.Name(),
			Position: uint32(len(v.entries)),
		})
	}
	v.next = 0
	return nil
}

func (v *Volume) NextEntry() (hal.Entry, bool, error) {
	if v.next >= len(v.entries) {
		return hal.Entry{}, false, nil
	}
	e := v.entries[v.next]
	v.next++
	return e, true, nil
}

func (v *Volume) EntryAt(pos uint32) (hal.Entry, error) {
	if int(pos) >= len(v.entries) {
		return hal.Entry{}, fmt.Errorf("position %d: %w", pos, hal.ErrFileNotFound)
	}
	return v.entries[pos], nil
}

func (v *Volume) Open(name string) (hal.File, error) {
	f, err := v.fs.Open(filepath.Join(v.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, hal.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", name, hal.ErrCannotOpenFile)
	}
	return f, nil
}

func (v *Volume) Create(name string) (hal.File, error) {
	f, err := v.fs.OpenFile(filepath.Join(v.dir, name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, hal.ErrCannotOpenFile)
	}
	return f, nil
}

func (v *Volume) Exists(name string) (bool, error) {
	return afero.Exists(v.fs, filepath.Join(v.dir, name))
}
