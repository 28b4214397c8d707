// Package entities provides the core domain types of the loader: terminal
// events, the key-event model delivered to guests, and loader configuration.
package entities
