// Package branding holds the user-visible product names.
package branding

// AppName is the product name shown by the CLI and MCP server.
const AppName = "Roll"

// Tagline follows AppName in version banners.
const Tagline = "Universal Dice Rolling Library"
