package domain

import "time"

// IdempotencyLog is a persisted transfer result keyed by a client-supplied
// idempotency key, making the debit+append step at-most-once. Replays
// return the recorded response instead of moving money again.
type IdempotencyLog struct {
	Key           string    `json:"key"` // "<resolved sender id>:<client key>"
	TransactionID string    `json:"transaction_id"`
	ResponseJSON  []byte    `json:"response_json"`
	CreatedAt     time.Time `json:"created_at"`
}

// BuildIdempotencyKey scopes a client-supplied key to the resolved sender,
// so two senders reusing the same key cannot collide.
func BuildIdempotencyKey(senderID, clientKey string) string {
	return senderID + ":" + clientKey
}
