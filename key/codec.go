// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package key

import (
	"encoding/binary"
	"math"

	gerrors "github.com/tochemey/entitystore/errors"
)

// EncodeEntityKey returns the raw 16 bytes of the key.
// There is no length prefix and no byte-order conversion.
func EncodeEntityKey(k EntityKey) []byte {
	out := make([]byte, EntityKeySize)
	copy(out, k[:])
	return out
}

// DecodeEntityKey decodes a backend reply into an EntityKey.
//
// Only byte-string replies ([]byte or string) of exactly 16 bytes are accepted.
// Entity identifiers are never represented as integers, so an integer reply
// is a type mismatch.
func DecodeEntityKey(reply any) (EntityKey, error) {
	switch v := reply.(type) {
	case []byte:
		return entityKeyFromBytes(v)
	case string:
		return entityKeyFromBytes([]byte(v))
	default:
		return EntityKey{}, gerrors.NewErrKeyTypeMismatch(entityKeyType, reply)
	}
}

// EncodeComponentKey returns the 2-byte little-endian form of the key.
func EncodeComponentKey(k ComponentKey) []byte {
	out := make([]byte, ComponentKeySize)
	binary.LittleEndian.PutUint16(out, uint16(k))
	return out
}

// DecodeComponentKey decodes a backend reply into a ComponentKey.
//
// Two reply shapes are accepted: a byte string of exactly 2 bytes decoded as
// little-endian, or a native integer within [0, 65535]. The backend returns the
// former for stored keys and the latter from counting or scripting commands.
func DecodeComponentKey(reply any) (ComponentKey, error) {
	switch v := reply.(type) {
	case []byte:
		return componentKeyFromBytes(v)
	case string:
		return componentKeyFromBytes([]byte(v))
	case int64:
		return componentKeyFromInt(v)
	case int:
		return componentKeyFromInt(int64(v))
	case int32:
		return componentKeyFromInt(int64(v))
	case int16:
		return componentKeyFromInt(int64(v))
	case int8:
		return componentKeyFromInt(int64(v))
	case uint64:
		if v > math.MaxUint16 {
			return 0, gerrors.NewErrKeyOutOfRange(componentKeyType, v)
		}
		return ComponentKey(v), nil
	case uint:
		if v > math.MaxUint16 {
			return 0, gerrors.NewErrKeyOutOfRange(componentKeyType, v)
		}
		return ComponentKey(v), nil
	case uint32:
		if v > math.MaxUint16 {
			return 0, gerrors.NewErrKeyOutOfRange(componentKeyType, v)
		}
		return ComponentKey(v), nil
	case uint16:
		return ComponentKey(v), nil
	case uint8:
		return ComponentKey(v), nil
	default:
		return 0, gerrors.NewErrKeyTypeMismatch(componentKeyType, reply)
	}
}

// DecodeComponentKeys decodes every element of a multi-bulk reply
func DecodeComponentKeys(replies []any) ([]ComponentKey, error) {
	keys := make([]ComponentKey, 0, len(replies))
	for _, reply := range replies {
		k, err := DecodeComponentKey(reply)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func entityKeyFromBytes(data []byte) (EntityKey, error) {
	if len(data) != EntityKeySize {
		return EntityKey{}, gerrors.NewErrInvalidKeyLength(entityKeyType, EntityKeySize, len(data))
	}
	var k EntityKey
	copy(k[:], data)
	return k, nil
}

func componentKeyFromBytes(data []byte) (ComponentKey, error) {
	if len(data) != ComponentKeySize {
		return 0, gerrors.NewErrInvalidKeyLength(componentKeyType, ComponentKeySize, len(data))
	}
	return ComponentKey(binary.LittleEndian.Uint16(data)), nil
}

func componentKeyFromInt(v int64) (ComponentKey, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, gerrors.NewErrKeyOutOfRange(componentKeyType, v)
	}
	return ComponentKey(v), nil
}
