package fields

import (
	"strings"

	"github.com/google/uuid"
)

// NamespaceFieldIdentity is the UUID v5 namespace for resolved field identities,
// derived from "twbmig/field-identity/v1" under the URL namespace.
var NamespaceFieldIdentity = uuid.NewSHA1(uuid.NameSpaceURL, []byte("twbmig/field-identity/v1"))

// GenerateFieldID returns a deterministic UUID v5 for a field of a datasource.
//
// The datasource name is case-folded; the canonical field name is not, since
// Tableau treats "Sales" and "sales" as different fields.
//
//	GenerateFieldID("federated.0abc", "Sales") == uuid_v5(ns, "federated.0abc/Sales")
func GenerateFieldID(datasource, canonicalName string) uuid.UUID {
	key := strings.ToLower(strings.TrimSpace(datasource)) + "/" + canonicalName
	return uuid.NewSHA1(NamespaceFieldIdentity, []byte(key))
}
