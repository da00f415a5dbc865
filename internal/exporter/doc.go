// Package exporter writes analysis artifacts to disk: CSV tables (with
// UTF-8 BOM, append and streaming modes) and Markdown documents. Figures
// are exported as data tables for an external renderer, never drawn here.
package exporter
