// Package all wires every built-in database backend into the storage
// registry. Import it for side effects:
//
//	import _ "fragranceetl/internal/storage/all"
//
// after which storage.New and storage.EnsureTable accept the kinds
// "sqlite", "postgres" and "mssql".
package all

import (
	_ "fragranceetl/internal/storage/mssql"
	_ "fragranceetl/internal/storage/postgres"
	_ "fragranceetl/internal/storage/sqlite"
)
