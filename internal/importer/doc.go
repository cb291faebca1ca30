// Package importer reads and writes the snapshot file: a chart's rows,
// columns and settings as one JSON (comments allowed) or YAML object.
package importer
