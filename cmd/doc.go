// Package cmd implements the avail command line interface.
package cmd
