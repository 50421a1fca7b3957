// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifetcherr defines the error taxonomy shared across the
// catalog, upstream client, updater, and config loader. Kinds distinguish
// fatal startup failures from per-pass failures the updater retries.
package artifetcherr

import "github.com/pkg/errors"

// Kind classifies an error by recovery strategy.
type Kind int

const (
	// ConfigLoad: malformed configuration document. Fatal at startup.
	ConfigLoad Kind = iota
	// RepoConfig: malformed "owner/name" entry. Fatal at startup.
	RepoConfig
	// ProviderInit: e.g. invalid auth configuration. Fatal at startup.
	ProviderInit
	// Transport: socket/TLS/DNS/timeout failure. Logged, retried next tick.
	Transport
	// Deserialize: unexpected JSON shape. Logged, retried next tick.
	Deserialize
	// ManifestParse: malformed manifest line. That release's transformation
	// fails; other releases in the same response continue.
	ManifestParse
	// MissingAsset: a manifest names an asset absent from the raw asset
	// list. That release's transformation fails.
	MissingAsset
	// RepoNotFound: ReplaceRepo's target is not present in the store.
	// Indicates a programmer error (an updater racing its own teardown);
	// logged, never expected in normal operation.
	RepoNotFound
	// APIError: upstream returned a non-2xx, non-304, non-404 status with a
	// parseable {success, message} body.
	APIError
)

func (k Kind) String() string {
	switch k {
	case ConfigLoad:
		return "ConfigLoad"
	case RepoConfig:
		return "RepoConfig"
	case ProviderInit:
		return "ProviderInit"
	case Transport:
		return "Transport"
	case Deserialize:
		return "Deserialize"
	case ManifestParse:
		return "ManifestParse"
	case MissingAsset:
		return "MissingAsset"
	case RepoNotFound:
		return "RepoNotFound"
	case APIError:
		return "APIError"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with a human-readable cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind wrapping msg.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap builds an *Error of the given kind wrapping err with additional
// context, following the errors.Wrap convention used throughout this
// module. Returns nil if err is nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrap(err, msg)}
}

// Is reports whether err is an *Error of the given kind, unwrapping as
// necessary.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
