package attendance

import (
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	"github.com/frahmantamala/hr-management/internal/geofence"
)

type ClockDTO struct {
	Location          *geofence.Coordinate `json:"location"`
	SkipLocationCheck bool                 `json:"skipLocationCheck"`
	Note              string               `json:"note"`
}

func (d ClockDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("note", d.Note).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Location != nil {
		if err := validation.ValidateCoordinate(d.Location.Latitude, d.Location.Longitude); err != nil {
			return err
		}
	}
	return nil
}

func validateRange(from, to string) error {
	if from != "" {
		if _, err := validation.ParseDate("from", from); err != nil {
			return err
		}
	}
	if to != "" {
		if _, err := validation.ParseDate("to", to); err != nil {
			return err
		}
	}
	return nil
}
