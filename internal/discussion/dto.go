package discussion

import (
	"strings"

	"github.com/frahmantamala/hr-management/internal/core/common/validation"
)

const maxMessageLength = 4000

type CreateChannelDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MemberIDs   []int64 `json:"memberIds"`
}

func (d *CreateChannelDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

func (d CreateChannelDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(120)
	v.Field("description", d.Description).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AddMembersDTO struct {
	UserIDs []int64 `json:"userIds"`
}

type PostMessageDTO struct {
	Body string `json:"body"`
}

func (d PostMessageDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("body", d.Body).Required().MaxLength(maxMessageLength)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// uniqueIDs drops zero and repeated ids while keeping order.
func uniqueIDs(ids ...int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
