// internal/storage/appendstore.go

// Package storage provides append-only stores of fixed-width integers backed
// by a memory-mapped file: a sequential single-writer append phase followed
// by a concurrent random-read phase.
package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

/*
 * Lifecycle: append values sequentially (buffered writes, single goroutine),
 * call Freeze to close the writer and map the file read-only, then read
 * randomly from any number of goroutines. The mapping is split into
 * power-of-two segments so the byte offset of a value is a shift and a mask.
 *
 * Values are big-endian on disk, so files written by other tooling in this
 * format read back unchanged.
 *
 * Reads before Freeze, or past the appended length, are programming errors
 * and panic rather than returning an error on the hot path.
 */

// DefaultSegmentBytes is the mapped-segment size used by the plain
// constructors.
const DefaultSegmentBytes = 1 << 20

const writeBufferBytes = 50_000

type appendStore struct {
	path        string
	file        *os.File
	writer      *bufio.Writer
	segmentBits uint
	segmentMask int64
	outBytes    int64
	segments    []mmap.MMap
	frozen      bool
}

func newAppendStore(path string, segmentBytes int64) (*appendStore, error) {
	if segmentBytes%8 != 0 || segmentBytes&(segmentBytes-1) != 0 || segmentBytes <= 0 {
		return nil, fmt.Errorf("segment size must be a positive power of 2 and a multiple of 8: %d", segmentBytes)
	}
	if segmentBytes%int64(os.Getpagesize()) != 0 {
		return nil, fmt.Errorf("segment size must be a multiple of the page size %d: %d", os.Getpagesize(), segmentBytes)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create append store %s: %w", path, err)
	}

	segmentBits := uint(0)
	for 1<<(segmentBits+1) <= segmentBytes {
		segmentBits++
	}

	return &appendStore{
		path:        path,
		file:        file,
		writer:      bufio.NewWriterSize(file, writeBufferBytes),
		segmentBits: segmentBits,
		segmentMask: segmentBytes - 1,
	}, nil
}

func (s *appendStore) append(buf []byte) error {
	if s.frozen {
		return fmt.Errorf("append store %s is frozen", s.path)
	}
	if _, err := s.writer.Write(buf); err != nil {
		return fmt.Errorf("failed to append to %s: %w", s.path, err)
	}
	s.outBytes += int64(len(buf))
	return nil
}

// freeze flushes pending writes and maps the file read-only in segments.
func (s *appendStore) freeze() error {
	if s.frozen {
		return nil
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, err)
	}

	segmentBytes := s.segmentMask + 1
	for start := int64(0); start < s.outBytes; start += segmentBytes {
		length := segmentBytes
		if remaining := s.outBytes - start; remaining < length {
			length = remaining
		}
		segment, err := mmap.MapRegion(s.file, int(length), mmap.RDONLY, 0, start)
		if err != nil {
			return fmt.Errorf("failed to map %s at %d: %w", s.path, start, err)
		}
		s.segments = append(s.segments, segment)
	}
	s.frozen = true
	return nil
}

func (s *appendStore) read(byteOffset int64, width int64) []byte {
	if !s.frozen {
		panic("appendstore: read before Freeze")
	}
	if byteOffset < 0 || byteOffset+width > s.outBytes {
		panic(fmt.Sprintf("appendstore: offset %d out of range [0, %d)", byteOffset, s.outBytes))
	}
	segment := s.segments[byteOffset>>s.segmentBits]
	offset := byteOffset & s.segmentMask
	return segment[offset : offset+width]
}

func (s *appendStore) close() error {
	var firstErr error
	if !s.frozen {
		if err := s.writer.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for i, segment := range s.segments {
		if err := segment.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.segments[i] = nil
	}
	s.segments = nil
	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *appendStore) diskUsageBytes() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// IntStore is an append-only store of int32 values.
type IntStore struct {
	store *appendStore
}

// NewIntStore creates an int32 store at path with the default segment size.
func NewIntStore(path string) (*IntStore, error) {
	return NewIntStoreSegmented(path, DefaultSegmentBytes)
}

// NewIntStoreSegmented creates an int32 store with an explicit mapped-segment
// size, which must be a power of 2 and a multiple of the page size.
func NewIntStoreSegmented(path string, segmentBytes int64) (*IntStore, error) {
	store, err := newAppendStore(path, segmentBytes)
	if err != nil {
		return nil, err
	}
	return &IntStore{store: store}, nil
}

// Append writes value at the next index.
func (s *IntStore) Append(value int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(value))
	return s.store.append(buf[:])
}

// Freeze ends the write phase and prepares the store for concurrent reads.
func (s *IntStore) Freeze() error { return s.store.freeze() }

// Get returns the value at index. Panics before Freeze or out of range.
func (s *IntStore) Get(index int64) int32 {
	return int32(binary.BigEndian.Uint32(s.store.read(index<<2, 4)))
}

// Len returns the number of appended values.
func (s *IntStore) Len() int64 { return s.store.outBytes >> 2 }

// DiskUsageBytes returns the size of the backing file.
func (s *IntStore) DiskUsageBytes() int64 { return s.store.diskUsageBytes() }

// Close unmaps and closes the backing file.
func (s *IntStore) Close() error { return s.store.close() }

// LongStore is an append-only store of int64 values.
type LongStore struct {
	store *appendStore
}

// NewLongStore creates an int64 store at path with the default segment size.
func NewLongStore(path string) (*LongStore, error) {
	return NewLongStoreSegmented(path, DefaultSegmentBytes)
}

// NewLongStoreSegmented creates an int64 store with an explicit mapped-segment
// size, which must be a power of 2 and a multiple of the page size.
func NewLongStoreSegmented(path string, segmentBytes int64) (*LongStore, error) {
	store, err := newAppendStore(path, segmentBytes)
	if err != nil {
		return nil, err
	}
	return &LongStore{store: store}, nil
}

// Append writes value at the next index.
func (s *LongStore) Append(value int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(value))
	return s.store.append(buf[:])
}

// Freeze ends the write phase and prepares the store for concurrent reads.
func (s *LongStore) Freeze() error { return s.store.freeze() }

// Get returns the value at index. Panics before Freeze or out of range.
func (s *LongStore) Get(index int64) int64 {
	return int64(binary.BigEndian.Uint64(s.store.read(index<<3, 8)))
}

// Len returns the number of appended values.
func (s *LongStore) Len() int64 { return s.store.outBytes >> 3 }

// DiskUsageBytes returns the size of the backing file.
func (s *LongStore) DiskUsageBytes() int64 { return s.store.diskUsageBytes() }

// Close unmaps and closes the backing file.
func (s *LongStore) Close() error { return s.store.close() }
