// Package migration holds the concrete schema migrations and the schema
// definitions built from them.
//
// Migrations are pure: anything they would otherwise read from the host
// (clock, CLI version, operator identity) is supplied through Options.
package migration

import (
	"time"

	"hiero-solo/pkg/data/schema/model"
)

// UnknownVersion is recorded for application versions a legacy document
// does not carry. It is replaced on the next upgrade of that component.
const UnknownVersion = "0.0.0"

// Options carries the host facts a migration may need.
type Options struct {
	// CLIVersion is recorded when a legacy document carries no CLI version.
	CLIVersion string

	// Identity returns the operator identity for documents that have none.
	Identity func() model.UserIdentity

	// Now returns the timestamp recorded in lastUpdatedAt.
	Now func() time.Time
}

func (o Options) cliVersion() string {
	if o.CLIVersion == "" {
		return UnknownVersion
	}
	return o.CLIVersion
}

func (o Options) identity() model.UserIdentity {
	if o.Identity == nil {
		return model.UserIdentity{}
	}
	return o.Identity()
}

func (o Options) now() string {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return now().UTC().Format(time.RFC3339Nano)
}

// migrationIdentity is written to lastUpdatedBy by remote migrations.
func migrationIdentity() map[string]any {
	return map[string]any{
		"name":     "system",
		"hostname": "migration",
	}
}
