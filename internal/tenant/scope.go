package tenant

import "gorm.io/gorm"

// Department restricts a query to one department's rows.
func Department(department string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("department = ?", department)
	}
}

// Active hides deactivated employees.
func Active() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true)
	}
}
