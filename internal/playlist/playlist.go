// Package playlist holds the ordered, capacity-bounded sequence of
// directory positions the playback orchestrator consumes, and the
// builder that repopulates it from a volume scan.
package playlist

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/picodeck/picodeck/internal/hal"
)

// DefaultCapacity bounds the playlist when no capacity is configured.
const DefaultCapacity = 100

// DefaultExtensions is the filename allow-list applied during scans.
var DefaultExtensions = []string{"mp3", "ogg", "aac", "wav", "flac"}

// List is a bounded ordered sequence of directory positions. It is
// rebuilt wholesale by the Builder and never partially mutated.
type List struct {
	capacity  int
	positions []uint32
}

func NewList(capacity int) *List {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &List{capacity: capacity}
}

func (l *List) Len() int {
	return len(l.positions)
}

func (l *List) Capacity() int {
	return l.capacity
}

// At returns the directory position of track i.
func (l *List) At(i int) (uint32, error) {
	if i < 0 || i >= len(l.positions) {
		return 0, fmt.Errorf("track %d out of range (%d tracks)", i, len(l.positions))
	}
	return l.positions[i], nil
}

// Builder scans a volume and repopulates a List. It must run once at
// startup and again after anything writes new files to the volume,
// since directory positions are only valid against the layout they
// were scanned from.
type Builder struct {
	vol        hal.Volume
	extensions []string
}

func NewBuilder(vol hal.Volume, extensions []string) *Builder {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	lowered := lo.Map(extensions, func(ext string, _ int) string {
		return strings.ToLower(strings.TrimPrefix(ext, "."))
	})
	return &Builder{vol: vol, extensions: lowered}
}

// Rebuild clears the list and repopulates it in directory-scan order,
// stopping early once the list is full.
func (b *Builder) Rebuild(l *List) error {
	l.positions = l.positions[:0]
	if err := b.vol.Rewind(); err != nil {
		return fmt.Errorf("rebuilding playlist: %w", err)
	}
	for {
		entry, ok, err := b.vol.NextEntry()
		if err != nil {
			return fmt.Errorf("rebuilding playlist: %w", err)
		}
		if !ok {
			return nil
		}
		if !b.allowed(entry.Name) {
			continue
		}
		l.positions = append(l.positions, entry.Position)
		if len(l.positions) >= l.capacity {
			return nil
		}
	}
}

func (b *Builder) allowed(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return lo.Contains(b.extensions, ext)
}
