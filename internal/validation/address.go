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

package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// HostPortValidator validates the host and optional port of a network address
type HostPortValidator struct {
	host string
	port string
}

// making sure the given struct implements the given interface
var _ Validator = (*HostPortValidator)(nil)

// NewHostPortValidator creates an instance of HostPortValidator.
// An empty port is accepted so that the backend default applies.
func NewHostPortValidator(host, port string) *HostPortValidator {
	return &HostPortValidator{host: host, port: port}
}

// Validate implements validation.Validator.
func (a *HostPortValidator) Validate() error {
	if strings.TrimSpace(a.host) == "" {
		return errors.New("host is required")
	}

	if a.port == "" {
		return nil
	}

	portNum, err := strconv.Atoi(a.port)
	if err != nil {
		return fmt.Errorf("invalid port=(%s): %w", a.port, err)
	}

	if portNum > 65535 || portNum < 0 {
		return fmt.Errorf("port=(%d) is out of range", portNum)
	}

	return nil
}

// emptyStringValidator checks a required string field
type emptyStringValidator struct {
	field string
	value string
}

var _ Validator = (*emptyStringValidator)(nil)

// NewEmptyStringValidator creates a validator that fails when value is blank
func NewEmptyStringValidator(field, value string) Validator {
	return &emptyStringValidator{field: field, value: value}
}

// Validate implements validation.Validator.
func (v *emptyStringValidator) Validate() error {
	if strings.TrimSpace(v.value) == "" {
		return fmt.Errorf("the [%s] is required", v.field)
	}
	return nil
}
