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

// Package key defines the typed identifiers stored in the backend and the codec
// mapping them to and from the backend wire representation.
//
// EntityKey and ComponentKey are distinct types so that an entity identifier can
// never be passed where a component-type identifier is expected. The codec in
// this package is the only place where they are turned into bytes.
package key

import (
	"encoding"
	"fmt"

	"github.com/google/uuid"
)

const (
	// EntityKeySize is the wire size of an EntityKey
	EntityKeySize = 16
	// ComponentKeySize is the wire size of a ComponentKey when stored as a byte string
	ComponentKeySize = 2

	entityKeyType    = "EntityKey"
	componentKeyType = "ComponentKey"
)

// EntityKey identifies one stored entity. It is a 128-bit UUID whose
// byte layout is used as-is on the wire.
type EntityKey uuid.UUID

// enforce compilation error
var (
	_ encoding.BinaryMarshaler   = EntityKey{}
	_ encoding.BinaryUnmarshaler = (*EntityKey)(nil)
	_ fmt.Stringer               = EntityKey{}
)

// NewEntityKey generates a random EntityKey
func NewEntityKey() EntityKey {
	return EntityKey(uuid.New())
}

// EntityKeyFromUUID wraps the given UUID
func EntityKeyFromUUID(id uuid.UUID) EntityKey {
	return EntityKey(id)
}

// ParseEntityKey parses the textual UUID representation of an entity key
func ParseEntityKey(s string) (EntityKey, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EntityKey{}, fmt.Errorf("failed to parse %s=(%s): %w", entityKeyType, s, err)
	}
	return EntityKey(id), nil
}

// UUID returns the underlying UUID
func (k EntityKey) UUID() uuid.UUID {
	return uuid.UUID(k)
}

// String returns the canonical textual form of the key
func (k EntityKey) String() string {
	return uuid.UUID(k).String()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (k EntityKey) MarshalBinary() ([]byte, error) {
	return EncodeEntityKey(k), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (k *EntityKey) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeEntityKey(data)
	if err != nil {
		return err
	}
	*k = decoded
	return nil
}

// ComponentKey identifies a type of component data stored for an entity.
// It is a selector, akin to a column, and not an instance.
type ComponentKey uint16

// enforce compilation error
var (
	_ encoding.BinaryMarshaler   = ComponentKey(0)
	_ encoding.BinaryUnmarshaler = (*ComponentKey)(nil)
	_ fmt.Stringer               = ComponentKey(0)
)

// String returns the decimal form of the key
func (k ComponentKey) String() string {
	return fmt.Sprintf("%s(%d)", componentKeyType, uint16(k))
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (k ComponentKey) MarshalBinary() ([]byte, error) {
	return EncodeComponentKey(k), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (k *ComponentKey) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeComponentKey(data)
	if err != nil {
		return err
	}
	*k = decoded
	return nil
}
