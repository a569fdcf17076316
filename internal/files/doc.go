// Package files groups the file handling of twbmig into sub-packages:
//   - filesystem: filesystem abstraction with OS and in-memory implementations
//   - scanner: discovery of .twb and .twbx workbooks for batch runs
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/twbmig/internal/files/filesystem"
//	    "github.com/vvka-141/twbmig/internal/files/scanner"
//	)
//
//	s := scanner.NewScanner(checksum.New())
//	result, err := s.ScanDirectory(ctx, "./workbooks")
package files
