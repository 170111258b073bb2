// Package commands defines the sitectl CLI used to operate sites from a shell.
//
// Commands
//
//   - site add|list|root      Register sites and point them at a home page
//   - branding show|set       Inspect or change a site's logo
//   - page create|publish|entries
//   - image add               Register a logo image, reading size from a local file
//   - user ensure             Create an operator account for the admin API
//   - seed                    Apply a YAML, TOML or JSON seed file
//
// The root command opens the configured database (DATABASE_DRIVER and
// DATABASE_DSN, overridable with --driver and --dsn) before any subcommand runs.
package commands
