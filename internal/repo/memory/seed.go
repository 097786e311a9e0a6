package memory

import "github.com/geocoder89/fuellog/internal/domain/user"

// SeedUsers returns the bootstrap accounts. They are demo data, replaced on every restart.
func SeedUsers(password string) []user.User {
	return []user.User{
		{ID: "1", Name: "João Silva", Role: user.RoleDriver, Password: password, Vehicle: "Caminhão VW-123"},
		{ID: "2", Name: "Maria Souza", Role: user.RoleDriver, Password: password, Vehicle: "Scania R450"},
		{ID: "3", Name: "Admin", Role: user.RoleAdmin, Password: password},
		{ID: "4", Name: "cgramos", Role: user.RoleAdmin, Password: password},
	}
}
