// Package archive locates the workbook XML inside a Tableau input file.
//
// A .twb is plain XML and is passed through. A .twbx is a zip archive
// (read with github.com/klauspost/compress/zip) holding the .twb next to
// extracts, images and data files; the first root-level .twb wins, falling
// back to the first .twb anywhere in the archive. Every packaged file is
// listed with its kind.
package archive
