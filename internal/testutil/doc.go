// Package testutil provides test helpers shared by the swan packages.
//
// This package includes:
//   - SQLite setup and schema assertions for checking generated DDL
//   - Error assertion helpers for checking error codes
//   - A Moodle plugin fixture with version.php, db/upgrade.php and entity files
//
// # Example Usage
//
//	func TestMigrate(t *testing.T) {
//	    p := testutil.NewPlugin(t, "local_example", 2024010100)
//	    p.WriteEntity(t, "message.yaml", "table: local_example_message\n")
//
//	    // run the command under test in p.Dir
//
//	    testutil.AssertFileContains(t, p.Path("db", "upgrade.php"), "new xmldb_table")
//	}
package testutil
