package user

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// userDTO is the stored JSON shape. The password hash lives only here;
// the domain type excludes it from API serialization.
type userDTO struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	RegisteredAt int64  `json:"registered_at"`
}

// parseUser unwraps the JSON.GET "$" array form into a domain user.
func parseUser(raw []byte) (domain.User, error) {
	var dtos []userDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		var dto userDTO
		if err2 := json.Unmarshal(raw, &dto); err2 == nil {
			return toDomain(dto), nil
		}
		return domain.User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	if len(dtos) == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return toDomain(dtos[0]), nil
}

func toDomain(dto userDTO) domain.User {
	return domain.User{
		ID:           dto.ID,
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		Role:         domain.Role(dto.Role),
		RegisteredAt: time.Unix(dto.RegisteredAt, 0).UTC(),
	}
}
