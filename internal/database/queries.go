package database

// Cart snapshot queries
const (
	UpsertCartSnapshotSQL = `
		INSERT INTO cart_snapshots (terminal_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (terminal_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW()`

	GetCartSnapshotSQL = `
		SELECT payload FROM cart_snapshots WHERE terminal_id = $1`

	DeleteCartSnapshotSQL = `
		DELETE FROM cart_snapshots WHERE terminal_id = $1`
)

// Order event log queries
const (
	InsertOrderEventSQL = `
		INSERT INTO order_event_log (kind, order_id, payment_id, routing_key, payload)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)`

	GetOrderEventsSQL = `
		SELECT kind, routing_key, payload, received_at
		FROM order_event_log
		WHERE order_id = $1
		ORDER BY received_at ASC`
)
