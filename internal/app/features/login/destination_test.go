package login

import (
	"testing"

	"github.com/mobilizabr/mobiliza/internal/domain/models"
)

func TestDestination(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		returnTo string
		want     string
	}{
		{"admin default", models.RoleAdmin, "", "/admin/dashboard"},
		{"leader default", models.RoleLeader, "", "/panel"},
		{"safe relative return wins", models.RoleAdmin, "/events/caminhada", "/events/caminhada"},
		{"absolute url rejected", models.RoleLeader, "https://evil.example/phish", "/panel"},
		{"protocol-relative rejected", models.RoleLeader, "//evil.example/phish", "/panel"},
		{"relative without slash rejected", models.RoleAdmin, "panel", "/admin/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := destination(tt.role, tt.returnTo); got != tt.want {
				t.Errorf("destination(%q, %q) = %q, want %q", tt.role, tt.returnTo, got, tt.want)
			}
		})
	}
}
