package factory

import (
	fab "github.com/Goldziher/fabricator"
	"golang.org/x/crypto/bcrypt"
)

func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	if len(customData) > 0 {
		hasPasswordHash := false

		for _, data := range customData {
			if _, exists := data["PasswordHash"]; exists {
				hasPasswordHash = true
				break
			}
		}

		if !hasPasswordHash {
			passwordHash, _ := bcrypt.GenerateFromPassword([]byte("12345678"), bcrypt.DefaultCost)

			customData = append(customData, map[string]any{
				"PasswordHash": string(passwordHash),
			})
		}
	}

	return instance.Build(customData...)
}
