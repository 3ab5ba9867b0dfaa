// Package testutil opens throwaway SQLite databases with the full schema for repository tests.
package testutil

import (
	activityDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/activity"
	attendanceDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/attendance"
	discussionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/discussion"
	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	feeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/fee"
	interviewDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/interview"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	projectDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models is every table the application owns.
var Models = []interface{}{
	&userDatamodel.User{},
	&employeeDatamodel.Employee{},
	&attendanceDatamodel.AttendanceRecord{},
	&leaveDatamodel.LeaveType{},
	&leaveDatamodel.LeaveBalance{},
	&leaveDatamodel.LeaveApplication{},
	&projectDatamodel.Project{},
	&projectDatamodel.Task{},
	&interviewDatamodel.Interview{},
	&discussionDatamodel.DiscussionChannel{},
	&discussionDatamodel.ChannelMember{},
	&discussionDatamodel.Message{},
	&feeDatamodel.Fee{},
	&feeDatamodel.FeePayment{},
	&activityDatamodel.ActivityLog{},
}

// OpenSQLite returns an in-memory database pinned to one connection so
// transactions and the schema share the same handle.
func OpenSQLite() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, err
	}
	return db, nil
}

// CreateUser inserts a user row and, when withProfile is set, its employee profile.
func CreateUser(db *gorm.DB, email, role string, withProfile bool) (*userDatamodel.User, *employeeDatamodel.Employee, error) {
	u := &userDatamodel.User{
		Email:        email,
		Name:         email,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		return nil, nil, err
	}
	if !withProfile {
		return u, nil, nil
	}
	e := &employeeDatamodel.Employee{
		UserID:      u.ID,
		FirstName:   email,
		JoiningDate: u.CreatedAt,
	}
	if err := db.Create(e).Error; err != nil {
		return nil, nil, err
	}
	return u, e, nil
}
