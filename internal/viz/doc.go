// Package viz holds the terminal styles shared by the CLI and the live
// sweep view.
package viz
