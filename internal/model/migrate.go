package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей ядра бронирований.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Instructor{},
		&Customer{},
		&CalendarConnection{},
		&Booking{},
		&AuditLog{},
	)
}
