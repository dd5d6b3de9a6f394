package types

type contextKey string

// ClientAppKey carries the initialized client application through the command
// context to subcommand packages.
const ClientAppKey contextKey = "client_app"
