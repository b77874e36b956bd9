package types

import (
	"crypto/sha256"
	"strings"

	"github.com/google/uuid"
)

// EmbedText reduces a component to the short canonical string used for
// vectorization. Source text and children are deliberately excluded to bound
// embedding cost and avoid diluting the signal with boilerplate.
func EmbedText(c *Component) string {
	var b strings.Builder
	b.WriteString("Name: ")
	b.WriteString(c.Name)
	b.WriteString("\nType: ")
	b.WriteString(string(c.Kind))
	b.WriteString("\nPath: ")
	b.WriteString(c.FullPath)
	if doc := FirstDocLine(c.DocSummary); doc != "" {
		b.WriteString("\nDocumentation: ")
		b.WriteString(doc)
	}
	return b.String()
}

// Identity computes the deterministic store ID for a component path within a
// collection: sha256 of "<collection>:<path>", first 16 bytes formatted as a
// 36-character 8-4-4-4-12 token. Stable identities make upsert idempotent:
// re-indexing an unchanged path always overwrites the same record.
func Identity(collection, path string) string {
	sum := sha256.Sum256([]byte(collection + ":" + path))
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		// FromBytes only fails on wrong length, which cannot happen here.
		panic(err)
	}
	return id.String()
}
