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

package backend

import (
	"errors"
	"net/url"
	"path"
	"strconv"
	"strings"

	gerrors "github.com/tochemey/entitystore/errors"
	"github.com/tochemey/entitystore/internal/validation"
)

// Kind enumerates the supported backends. It is selected once, from the
// address scheme, when the connection is configured.
type Kind int

const (
	// Redis is a Redis server reached with the redis:// or rediss:// scheme
	Redis Kind = iota + 1
	// Bolt is an embedded bbolt file reached with the bolt:// scheme
	Bolt
)

// schemes maps the lower-cased URL scheme to the backend kind
var schemes = map[string]Kind{
	"redis":  Redis,
	"rediss": Redis,
	"bolt":   Bolt,
}

// String returns the backend name
func (k Kind) String() string {
	switch k {
	case Redis:
		return "redis"
	case Bolt:
		return "bolt"
	default:
		return "unknown"
	}
}

// Address is a validated backend address
type Address struct {
	kind Kind
	url  *url.URL
}

// ParseAddress parses and validates a URL-like backend address.
//
// The scheme is matched case-insensitively. An unknown scheme yields
// errors.ErrUnsupportedScheme and a malformed or incomplete address yields
// errors.ErrInvalidAddress. No connection is attempted.
func ParseAddress(raw string) (*Address, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, gerrors.NewErrInvalidAddress(err)
	}

	if parsed.Scheme == "" {
		return nil, gerrors.NewErrInvalidAddress(errors.New("scheme is required"))
	}

	scheme := strings.ToLower(parsed.Scheme)
	kind, ok := schemes[scheme]
	if !ok {
		return nil, gerrors.NewErrUnsupportedScheme(parsed.Scheme)
	}
	parsed.Scheme = scheme

	address := &Address{kind: kind, url: parsed}
	if err := address.validate(); err != nil {
		return nil, gerrors.NewErrInvalidAddress(err)
	}
	return address, nil
}

// Kind returns the backend kind selected by the address scheme
func (a *Address) Kind() Kind {
	return a.kind
}

// URL returns a copy of the parsed address
func (a *Address) URL() *url.URL {
	clone := *a.url
	if a.url.User != nil {
		user := *a.url.User
		clone.User = &user
	}
	return &clone
}

// FilePath returns the database file of a Bolt address.
// bolt:///var/lib/app.db is absolute, bolt://data/app.db and bolt:app.db are relative.
func (a *Address) FilePath() string {
	if a.url.Opaque != "" {
		return a.url.Opaque
	}
	if a.url.Host != "" {
		return a.url.Host + a.url.Path
	}
	return a.url.Path
}

// String returns the address with any password redacted
func (a *Address) String() string {
	return a.url.Redacted()
}

func (a *Address) validate() error {
	switch a.kind {
	case Redis:
		chain := validation.New(validation.AllErrors()).
			AddValidator(validation.NewHostPortValidator(a.url.Hostname(), a.url.Port())).
			AddAssertion(isRedisDatabase(a.url.Path), "redis database must be a number")
		return chain.Validate()
	case Bolt:
		filePath := a.FilePath()
		return validation.New(validation.FailFast()).
			AddValidator(validation.NewEmptyStringValidator("file path", filePath)).
			AddAssertion(!strings.HasSuffix(filePath, "/") && path.Base(filePath) != ".", "bolt address must name a file").
			Validate()
	default:
		return gerrors.NewErrUnsupportedScheme(a.kind.String())
	}
}

func isRedisDatabase(p string) bool {
	db := strings.Trim(p, "/")
	if db == "" {
		return true
	}
	_, err := strconv.Atoi(db)
	return err == nil
}
