// Package roster keeps the list of player names shown to operators.
//
// The list lives in a small YAML file:
//
//	players:
//	  - Ana
//	  - Bea
//
// Operators edit it through the API (Replace, Add) and the change is
// written back to disk. Hand edits to the file are picked up by Watch,
// which uses fsnotify on the file's directory.
package roster
