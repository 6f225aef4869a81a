package tenant

import "gorm.io/gorm"

// Scope restricts a query to one company. Every repository in this codebase
// applies it; nothing reads cross-tenant except the global salary structures.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
