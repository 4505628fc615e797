// Package database handles database connections, migrations and schema inspection.
//
// It wraps GORM so the rest of the application only deals with *gorm.DB.
// MySQL is the production dialect; sqlite serves local runs and tests.
//
// # Schema Inspection
//
// GetTableColumns reads the live column list on both dialects. VerifySchema
// builds on it to confirm that the sync tables carry the columns the channel
// core relies on after a migration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	err = database.Migrate(db, &booking.CanonicalBooking{}, &booking.SyncRunLog{})
package database
