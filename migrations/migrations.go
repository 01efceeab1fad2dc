// Package migrations embeds the goose SQL migrations for the extranet
// database objects the agent owns: the call journal, action log and feedback
// tables. The client, contract and employee tables are created here too for
// standalone deployments; in production they may already exist in the CRM
// database, in which case goose simply records them as applied.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
