package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Blocks is the repository for the block relation between user pairs.
//
// Relations are stored directed (blocker, blocked); every read applies the
// symmetric closure, so a block in either direction restricts both parties.
type Blocks struct {
	pool *pgxpool.Pool
}

// NewBlocks constructs the block repository.
func NewBlocks(pool *pgxpool.Pool) *Blocks {
	return &Blocks{pool: pool}
}

// IsBlocked reports whether a block relation exists between a and b in either direction.
func (s *Blocks) IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)`

	var blocked bool
	if err := s.pool.QueryRow(ctx, q, a, b).Scan(&blocked); err != nil {
		return false, fmt.Errorf("check block relation: %w", err)
	}
	return blocked, nil
}

// BlockedPeers returns every user restricted from the given user in one pass,
// regardless of which party initiated the block. Used to exclude senders from
// room fan-out and history without a per-pair query.
func (s *Blocks) BlockedPeers(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	const q = `
		SELECT CASE WHEN blocker_id = $1 THEN blocked_id ELSE blocker_id END
		FROM blocks
		WHERE blocker_id = $1 OR blocked_id = $1`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocked peers: %w", err)
	}
	defer rows.Close()

	peers := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var peer uuid.UUID
		if err := rows.Scan(&peer); err != nil {
			return nil, fmt.Errorf("scan blocked peer: %w", err)
		}
		peers[peer] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocked peers: %w", err)
	}

	return peers, nil
}

// Block records a directed block relation. Blocking a user twice is a no-op.
func (s *Blocks) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	const q = `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT blocks_pair_unique DO NOTHING`

	if _, err := s.pool.Exec(ctx, q, blockerID, blockedID); err != nil {
		return fmt.Errorf("block user: %w", err)
	}
	return nil
}

// Unblock removes the caller's directed relation. Unblocking a user who was never
// blocked succeeds without error.
func (s *Blocks) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	const q = `DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`

	if _, err := s.pool.Exec(ctx, q, blockerID, blockedID); err != nil {
		return fmt.Errorf("unblock user: %w", err)
	}
	return nil
}
