// Package fileutil holds file permission modes shared by tests and tools.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for spec and data files written
// by tests (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600

// OwnerDir is the permission mode for directories created for spec trees.
const OwnerDir os.FileMode = 0o750
