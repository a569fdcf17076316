// Package checksum hashes workbook content and custom SQL.
//
//   - Raw checksum: SHA-256 of the exact bytes, recorded for every workbook
//     read so repeated runs over the same file can be recognized.
//   - Normalized checksum: SHA-256 of custom SQL after removing comments,
//     case and whitespace differences. Two datasources with the same
//     normalized checksum run the same query.
//
// # Example Usage
//
//	calc := checksum.New()
//	sum := calc.CalculateRaw(workbookBytes)
//	fp := calc.Fingerprint(customSQL)
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
