// services/collection-service/internal/deposit/idempotency.go
package deposit

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// IdempotencyKey identifies a submission by its payment set: the same payments
// always produce the same key, whatever their order.
func IdempotencyKey(paymentIDs []uuid.UUID) string {
	ids := make([]string, len(paymentIDs))
	for i, id := range paymentIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, ",")))
	return "dep_" + hex.EncodeToString(sum[:])
}
