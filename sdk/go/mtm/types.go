package mtm

import (
	"github.com/ppiankov/mtm/internal/client"
	"github.com/ppiankov/mtm/internal/manifest"
)

// Manifest is a validated model trust manifest.
type Manifest = manifest.Manifest

// Error is returned for every rejected manifest.
type Error = manifest.Error

// Kind classifies an Error.
type Kind = manifest.Kind

const (
	KindParse       = manifest.KindParse
	KindSchema      = manifest.KindSchema
	KindEnforcement = manifest.KindEnforcement
	// KindUnavailable means the remote validation server could not be reached.
	KindUnavailable Kind = client.KindUnavailable
)

// Schema version accepted by this package.
const SchemaVersion = manifest.Version

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	return manifest.KindOf(err)
}

// resultError maps a remote verdict back onto the local error type.
func resultError(r client.Result) error {
	switch Kind(r.Kind) {
	case KindEnforcement:
		return manifest.NewEnforcementError(r.Constraint)
	case KindSchema:
		return manifest.NewSchemaError(r.Reason)
	case KindParse:
		return manifest.NewParseError(r.Reason, nil)
	default:
		return &manifest.Error{Kind: Kind(r.Kind), Reason: r.Reason}
	}
}
