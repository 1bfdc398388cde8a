// Package pool provides pooled byte buffers for record block I/O and text
// formatting, keeping the hot paths of ingest, paging and export free of
// per-call allocations.
package pool
