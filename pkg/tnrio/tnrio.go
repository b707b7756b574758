// Package tnrio is the caller-side convenience for persisting a
// preprocessed artifact to disk. spec.md §6 is explicit that no on-disk
// format is required by the core; this package is that optional
// persistence layer, one level up from pkg/tnr.
//
// The framing — magic bytes, version, CRC32 trailer, atomic write via a
// temp file plus os.Rename — is grounded in shape on
// azybler-map_router/pkg/graph/binary.go, but the payload itself is
// encoding/gob rather than hand-packed CSR arrays: the artifact is
// generic over an arbitrary comparable K and holds maps, not fixed-width
// slices, so unsafe.Slice packing doesn't generalize the way it does for
// the teacher's concrete uint32 CSR graph.
package tnrio

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/crc32"
	"os"

	"tnrch/pkg/tnr"
)

const (
	magic   = "TNRCHF01"
	version = uint32(1)
)

// ErrBadMagic is returned by Load when the file does not start with the
// expected magic bytes.
var ErrBadMagic = errors.New("tnrio: not a tnrch artifact file")

// ErrUnsupportedVersion is returned by Load when the file's version is
// newer or older than this package understands.
var ErrUnsupportedVersion = errors.New("tnrio: unsupported artifact file version")

// ErrChecksumMismatch is returned by Load when the CRC32 trailer does not
// match the payload — the file is truncated or corrupted.
var ErrChecksumMismatch = errors.New("tnrio: checksum mismatch, file is corrupt")

type header struct {
	Magic   [8]byte
	Version uint32
}

// Save writes art's snapshot to path: header, gob-encoded payload, CRC32
// trailer over the payload bytes. Writes to path+".tmp" first and renames
// into place, so a reader never observes a partially-written file.
func Save[K comparable](path string, art *tnr.Artifact[K]) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(art.Snapshot()); err != nil {
		return fmt.Errorf("tnrio: encode snapshot: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("tnrio: create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	var hdr header
	copy(hdr.Magic[:], magic)
	hdr.Version = version
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("tnrio: write header: %w", err)
	}
	if _, err := f.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("tnrio: write payload: %w", err)
	}
	checksum := crc32.ChecksumIEEE(payload.Bytes())
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("tnrio: write checksum: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("tnrio: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("tnrio: rename into place: %w", err)
	}
	return nil
}

// Load reads an artifact file previously written by Save and rebuilds the
// Artifact it describes.
func Load[K comparable](path string) (*tnr.Artifact[K], error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tnrio: read %s: %w", path, err)
	}
	if len(raw) < 12+4 { // header + trailing CRC32
		return nil, ErrBadMagic
	}

	var hdr header
	if err := binary.Read(bytes.NewReader(raw[:12]), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("tnrio: read header: %w", err)
	}
	if string(hdr.Magic[:]) != magic {
		return nil, ErrBadMagic
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("tnrio: file version %d: %w", hdr.Version, ErrUnsupportedVersion)
	}

	body := raw[12 : len(raw)-4]
	storedCRC := binary.LittleEndian.Uint32(raw[len(raw)-4:])
	if crc32.ChecksumIEEE(body) != storedCRC {
		return nil, ErrChecksumMismatch
	}

	var snap tnr.Snapshot[K]
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("tnrio: decode snapshot: %w", err)
	}
	return tnr.FromSnapshot(snap), nil
}
