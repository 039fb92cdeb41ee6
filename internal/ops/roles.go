package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/warden/internal/db"
	"github.com/hpungsan/warden/internal/roles"
)

// RoleGrant is one role an approval would grant.
type RoleGrant struct {
	Kind   roles.Role `json:"kind"`
	RoleID string     `json:"role_id,omitempty"`
	Bound  bool       `json:"bound"`
}

// RolesOutput previews an approval of a card.
type RolesOutput struct {
	CardID string      `json:"card_id"`
	Status string      `json:"status"`
	Grants []RoleGrant `json:"grants"`
}

// PreviewRoles lists the roles an approval of cardID would grant under bindings.
// Nothing is granted.
func PreviewRoles(ctx context.Context, database *sql.DB, bindings roles.Bindings, cardID int64) (*RolesOutput, error) {
	r, err := db.GetByCardID(ctx, database, cardID)
	if err != nil {
		return nil, err
	}

	derived := roles.Derive(r)
	grants := make([]RoleGrant, 0, len(derived))
	for _, kind := range derived {
		id := bindings[kind]
		grants = append(grants, RoleGrant{Kind: kind, RoleID: id, Bound: id != ""})
	}

	return &RolesOutput{
		CardID: formatID(r.CardID),
		Status: string(r.Status),
		Grants: grants,
	}, nil
}
