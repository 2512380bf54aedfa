// Package database opens the SQLite store that holds the route history.
//
// The connection runs in WAL mode so API reads do not wait on audit
// writes. Migrate applies YYYYMMDD_HHMMSS_name.up.sql files from an fs.FS
// in name order and records each in schema_migrations; MigrateDown runs the
// latest matching .down.sql. Schema changes are additive only.
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	err = db.Migrate(ctx, migrations.FS)
package database
