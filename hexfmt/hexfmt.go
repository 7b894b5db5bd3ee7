// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package hexfmt converts between raw bytes and the hex text used by
// scripts and the console ("AA BB CC").
package hexfmt

import (
	"strconv"
	"strings"
	"unicode"
)

// Decode converts hex text into bytes.
//
// All whitespace is removed, an odd-length string gets a trailing '0'
// nibble, and every two characters become one byte. Pairs that are not
// valid hex are dropped rather than failing the whole conversion.
func Decode(text string) (data []byte) {
	digits := []rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text))

	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}

	data = make([]byte, 0, len(digits)/2)
	for n := 0; n < len(digits); n += 2 {
		value, err := strconv.ParseUint(string(digits[n:n+2]), 16, 8)
		if err != nil {
			continue
		}
		data = append(data, byte(value))
	}

	return
}

const upperHex = "0123456789ABCDEF"

// Encode renders bytes as upper-case hex pairs separated by single spaces.
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(data)*3 - 1)
	for n, b := range data {
		if n > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(upperHex[b>>4])
		sb.WriteByte(upperHex[b&0xf])
	}

	return sb.String()
}
