// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"
)

// Sealed record layout:
//
//	[0]      format version (recordVersion)
//	[1]      Compression
//	[2..]    uvarint uncompressed payload length
//	[..+32]  BLAKE3 keyed digest of the uncompressed payload
//	[...]    payload, compressed per [1]
const recordVersion = 1

const digestSize = 32

// recordDomainKey keys the record digest: the ASCII domain name,
// zero-padded to 32 bytes.
var recordDomainKey = [32]byte{
	'm', 'u', 's', 'e', 'u', 'm', '.', 's', 't', 'o', 'r', 'e', '.', 'r', 'e', 'c',
	'o', 'r', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func recordDigest(payload []byte) [digestSize]byte {
	hasher, err := blake3.NewKeyed(recordDomainKey[:])
	if err != nil {
		// NewKeyed only fails on a key that is not 32 bytes.
		panic("store: blake3.NewKeyed: " + err.Error())
	}
	hasher.Write(payload)
	var digest [digestSize]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Seal frames payload as a sealed record, compressing it when that
// makes it smaller.
func Seal(payload []byte, compression Compression) ([]byte, error) {
	body, err := compress(payload, compression)
	if err == errIncompressible {
		body, compression = payload, CompressionNone
	} else if err != nil {
		return nil, err
	}

	digest := recordDigest(payload)
	record := make([]byte, 0, 2+binary.MaxVarintLen64+digestSize+len(body))
	record = append(record, recordVersion, byte(compression))
	record = binary.AppendUvarint(record, uint64(len(payload)))
	record = append(record, digest[:]...)
	record = append(record, body...)
	return record, nil
}

// Unseal reverses Seal and verifies the digest.
func Unseal(record []byte) ([]byte, error) {
	if len(record) < 2 {
		return nil, fmt.Errorf("sealed record truncated (%d bytes)", len(record))
	}
	if record[0] != recordVersion {
		return nil, fmt.Errorf("sealed record version %d, expected %d", record[0], recordVersion)
	}
	compression := Compression(record[1])
	size, consumed := binary.Uvarint(record[2:])
	if consumed <= 0 {
		return nil, fmt.Errorf("sealed record has a malformed length")
	}
	offset := 2 + consumed
	if len(record) < offset+digestSize {
		return nil, fmt.Errorf("sealed record truncated before digest")
	}
	stored := record[offset : offset+digestSize]
	payload, err := decompress(record[offset+digestSize:], compression, int(size))
	if err != nil {
		return nil, err
	}
	computed := recordDigest(payload)
	if !bytes.Equal(stored, computed[:]) {
		return nil, fmt.Errorf("sealed record digest mismatch")
	}
	return payload, nil
}
