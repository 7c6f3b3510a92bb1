// Package syncer pulls tables from an external columnar database into
// quickset on a schedule or on demand. A Source abstracts the remote
// system; the built-in ClickHouseSource speaks the ClickHouse HTTP
// interface in TabSeparated format. Syncs replace the target table
// wholesale and go through the public quickset mutation API only.
package syncer
