// Package hashing builds a multi-algorithm hash and checksum report.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
	"golang.org/x/text/encoding/unicode"
)

// Unavailable is reported for algorithms this build does not implement.
const Unavailable = "Unavailable in this build"

// NTLMNeedsText is reported for NTLM when the input is not text.
const NTLMNeedsText = "Unavailable: NTLM requires text input"

// Entry is one line of a hash report.
type Entry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func generator(name string) string { return name + " Hash Generator" }

// Report hashes data with every supported algorithm, in a fixed order.
// text is the same input as a string, or nil when the input is not text;
// NTLM is only computed for text.
func Report(data []byte, text *string) []Entry {
	sha2 := sumHash(sha256.New(), data)

	return []Entry{
		{generator("MD2"), Unavailable},
		{generator("MD4"), sumHash(md4.New(), data)},
		{generator("MD5"), sumHash(md5.New(), data)},
		{generator("NTLM"), ntlm(text)},
		{generator("SHA1"), sumHash(sha1.New(), data)},
		{generator("SHA2"), sha2},
		{generator("SHA224"), sumHash(sha256.New224(), data)},
		{generator("SHA256"), sha2},
		{generator("SHA384"), sumHash(sha512.New384(), data)},
		{generator("SHA512"), sumHash(sha512.New(), data)},
		{generator("SHA512/224"), sumHash(sha512.New512_224(), data)},
		{generator("SHA512/256"), sumHash(sha512.New512_256(), data)},
		{generator("SHA3-224"), sumHash(sha3.New224(), data)},
		{generator("SHA3-256"), sumHash(sha3.New256(), data)},
		{generator("SHA3-384"), sumHash(sha3.New384(), data)},
		{generator("SHA3-512"), sumHash(sha3.New512(), data)},
		{generator("CRC-16"), fmt.Sprintf("%04x", CRC16CCITT(data))},
		{generator("CRC-32"), fmt.Sprintf("%08x", crc32.ChecksumIEEE(data))},
		{generator("Shake-128"), shake(sha3.ShakeSum128, data, 32)},
		{generator("Shake-256"), shake(sha3.ShakeSum256, data, 64)},
		{generator("MD6"), Unavailable},
		{generator("Whirlpool"), Unavailable},
		{generator("BLAKE2b-512"), blake2bSum(data)},
		{generator("BLAKE2s-256"), blake2sSum(data)},
		{generator("BLAKE3"), sumHash(blake3.New(), data)},
		{generator("RIPEMD-160"), sumHash(ripemd160.New(), data)},
		{"Checksum Calculator", fmt.Sprintf("%08x", Checksum(data))},
	}
}

func blake2bSum(data []byte) string {
	sum := blake2b.Sum512(data)
	return hex.EncodeToString(sum[:])
}

func blake2sSum(data []byte) string {
	sum := blake2s.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sumHash(h hash.Hash, data []byte) string {
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func shake(sum func(out, data []byte), data []byte, size int) string {
	out := make([]byte, size)
	sum(out, data)
	return hex.EncodeToString(out)
}

func ntlm(text *string) string {
	if text == nil {
		return NTLMNeedsText
	}
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(*text))
	if err != nil {
		return NTLMNeedsText
	}
	return sumHash(md4.New(), encoded)
}

// CRC16CCITT computes CRC-16/CCITT-FALSE: polynomial 0x1021, initial value
// 0xFFFF, no reflection and no final XOR.
func CRC16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Checksum is the sum of all bytes modulo 2^32.
func Checksum(data []byte) uint32 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return sum
}
