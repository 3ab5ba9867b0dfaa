package attendance

import "time"

type AttendanceRecord struct {
	ID                 int64      `gorm:"primaryKey"`
	EmployeeID         int64      `gorm:"column:employee_id;not null;uniqueIndex:idx_attendance_employee_day"`
	WorkDate           string     `gorm:"column:work_date;size:10;not null;uniqueIndex:idx_attendance_employee_day"`
	ClockInAt          time.Time  `gorm:"column:clock_in_at;not null"`
	ClockOutAt         *time.Time `gorm:"column:clock_out_at"`
	ClockInLatitude    *float64   `gorm:"column:clock_in_latitude"`
	ClockInLongitude   *float64   `gorm:"column:clock_in_longitude"`
	ClockInDistanceKm  *float64   `gorm:"column:clock_in_distance_km"`
	ClockOutLatitude   *float64   `gorm:"column:clock_out_latitude"`
	ClockOutLongitude  *float64   `gorm:"column:clock_out_longitude"`
	ClockOutDistanceKm *float64   `gorm:"column:clock_out_distance_km"`
	WorkedMinutes      int        `gorm:"column:worked_minutes"`
	Note               string     `gorm:"column:note"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
