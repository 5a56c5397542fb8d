package repository

import (
	"context"
	"fmt"
)

type signatureRepo struct{}

// NewSignatureRepository returns a pgx-backed SignatureRepository.
func NewSignatureRepository() SignatureRepository {
	return &signatureRepo{}
}

func (r *signatureRepo) Claim(ctx context.Context, db DBTX, signature, eventName string) (bool, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO processed_signatures (signature, event_name)
		VALUES ($1, $2)
		ON CONFLICT (signature) DO NOTHING`, signature, eventName)
	if err != nil {
		return false, fmt.Errorf("claim signature: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *signatureRepo) SetOutcome(ctx context.Context, db DBTX, signature string, outcome SignatureOutcome, reason string) error {
	_, err := db.Exec(ctx, `
		UPDATE processed_signatures SET outcome = $1, reason = $2 WHERE signature = $3`,
		string(outcome), reason, signature)
	if err != nil {
		return fmt.Errorf("set signature outcome: %w", err)
	}
	return nil
}

func (r *signatureRepo) Exists(ctx context.Context, db DBTX, signature string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM processed_signatures WHERE signature = $1)`, signature).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check signature: %w", err)
	}
	return exists, nil
}
