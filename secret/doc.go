// Package secret resolves credentials referenced from the observability
// settings document.
//
// Two forms are supported in any resolved field (endpoints, user names,
// passwords, S3 keys):
//   - Environment references: ${VAR}, expanded strictly (see ExpandEnvStrict)
//   - Provider references: secretref:<provider>:<ref>, either as the whole
//     value or inline, e.g. Server=db;Password=secretref:file:sql-password
//
// Two providers ship with the package and are available from DefaultRegistry:
// "env" (reads an environment variable) and "file" (reads a file below a
// directory, e.g. mounted container secrets).
package secret
