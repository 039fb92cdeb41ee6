package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/warden/internal/roles"
)

func TestPreviewRoles(t *testing.T) {
	database := setupDB(t)
	insertRecord(t, database, 4242, 101, 1000)

	bindings := roles.Bindings{
		roles.Verified: "900",
		roles.Adult:    "901",
	}

	out, err := PreviewRoles(context.Background(), database, bindings, 4242)
	if err != nil {
		t.Fatalf("PreviewRoles failed: %v", err)
	}

	want := roles.Derive(mustShowRecord(t, database, 4242))
	if len(out.Grants) != len(want) {
		t.Fatalf("len(Grants) = %d, want %d", len(out.Grants), len(want))
	}

	for _, g := range out.Grants {
		switch g.Kind {
		case roles.Verified, roles.Adult:
			if !g.Bound || g.RoleID != bindings[g.Kind] {
				t.Errorf("%s: got %+v, want bound to %s", g.Kind, g, bindings[g.Kind])
			}
		default:
			if g.Bound || g.RoleID != "" {
				t.Errorf("%s: got %+v, want unbound", g.Kind, g)
			}
		}
	}
}
