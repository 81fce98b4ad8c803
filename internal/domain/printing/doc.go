// Package printing contains the print-bridge domain model: page sizes,
// page ranges, request classification and the rules for turning an accepted
// request plus a printer's capabilities into concrete spooler settings.
// Everything in this package is pure; I/O lives in the infrastructure layer.
package printing
