package notifyhub

import "embed"

// Migrations holds the embedded SQL schema applied at startup when the
// service runs against PostgreSQL.
//
//go:embed migrations/*.sql
var Migrations embed.FS
