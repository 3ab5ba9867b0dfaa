// Package geofence decides whether a claimed coordinate counts as being at the office.
package geofence

import (
	"log/slog"
	"math"

	"github.com/frahmantamala/hr-management/internal"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Office struct {
	Coordinate
	RadiusKm float64 `json:"radiusKm"`
}

type Result struct {
	Within     bool    `json:"within"`
	DistanceKm float64 `json:"distanceKm"`
}

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a slightly past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// IsWithinRadius is inclusive: a distance equal to the radius is within.
func IsWithinRadius(lat, lon, officeLat, officeLon, radiusKm float64) Result {
	d := DistanceKm(lat, lon, officeLat, officeLon)
	return Result{Within: d <= radiusKm, DistanceKm: d}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Policy applies the office geofence to login and clock-in/out requests.
type Policy struct {
	Office      Office
	AllowBypass bool
	// RequiredRoles are the roles that must be on site; everything else is exempt.
	RequiredRoles map[string]bool
	logger        *slog.Logger
}

func NewPolicy(cfg internal.OfficeConfig, requiredRoles []string, logger *slog.Logger) *Policy {
	roles := make(map[string]bool, len(requiredRoles))
	for _, r := range requiredRoles {
		roles[r] = true
	}
	return &Policy{
		Office: Office{
			Coordinate: Coordinate{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
			RadiusKm:   cfg.RadiusKm,
		},
		AllowBypass:   cfg.AllowLocationBypass,
		RequiredRoles: roles,
		logger:        logger,
	}
}

// Check is the request-level decision.
type Check struct {
	Role              string
	UserID            int64
	Location          *Coordinate
	SkipLocationCheck bool
	Variant           internal.Variant
}

// Evaluate returns nil result for exempt roles. A missing coordinate and an
// out-of-radius coordinate produce different error codes.
func (p *Policy) Evaluate(c Check) (*Result, error) {
	if !p.RequiredRoles[c.Role] {
		if c.Location == nil {
			return nil, nil
		}
		res := p.measure(*c.Location)
		return &res, nil
	}

	if c.SkipLocationCheck {
		if p.AllowBypass && c.Variant == internal.VariantMobile {
			p.logger.Warn("geofence bypassed by client flag", "user_id", c.UserID, "role", c.Role)
			return nil, nil
		}
		p.logger.Warn("ignoring location bypass request", "user_id", c.UserID, "variant", c.Variant)
	}

	if c.Location == nil {
		return nil, p.locationError(internal.ErrCodeLocationRequired,
			"Location access is required for your role. Please enable location services.", nil)
	}

	if verr := validateCoordinate(*c.Location); verr != nil {
		return nil, verr
	}

	res := p.measure(*c.Location)
	if !res.Within {
		return &res, p.locationError(internal.ErrCodeOutsideGeofence,
			"You must be at the office location to continue.", &res)
	}
	return &res, nil
}

func (p *Policy) measure(c Coordinate) Result {
	return IsWithinRadius(c.Latitude, c.Longitude, p.Office.Latitude, p.Office.Longitude, p.Office.RadiusKm)
}

func (p *Policy) locationError(code internal.ErrorCode, msg string, res *Result) error {
	err := internal.NewForbiddenError(msg, code).
		WithMeta("locationRequired", true).
		WithMeta("officeLocation", p.Office)
	if res != nil {
		err = err.WithMeta("distance", math.Round(res.DistanceKm*100)/100)
	}
	return err
}

func validateCoordinate(c Coordinate) error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return internal.NewValidationError("location coordinates are out of range", internal.ErrCodeValidationFailed)
	}
	return nil
}
